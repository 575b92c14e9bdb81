package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDParam parses the {id} URL parameter. On failure it writes 400 and
// returns false.
func IDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "Invalid id")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// Policy writes a 400 when err is a capacity policy refusal and reports
// whether it did. The body carries the error kind; msgs overrides the
// message per sentinel.
func Policy(w http.ResponseWriter, err error, msgs map[error]string) bool {
	for _, target := range []error{
		capacitypolicy.ErrIneligible,
		capacitypolicy.ErrBelowMinimum,
		capacitypolicy.ErrCapacityExceeded,
	} {
		if !stderrors.Is(err, target) {
			continue
		}
		msg, ok := msgs[target]
		if !ok {
			msg = target.Error()
		}
		JSON(w, http.StatusBadRequest, Body{Error: msg, Kind: capacitypolicy.Kind(target)})
		return true
	}
	return false
}
