package mailer

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestBuildOTPEmail(t *testing.T) {
	msg := BuildOTPEmail(OTPEmailData{
		SiteName:  "MTT",
		Name:      "Ana",
		Code:      "123456",
		ExpiresIn: "2 minutes",
	})

	if !strings.Contains(msg.Subject, "MTT") {
		t.Errorf("subject: got %q, want it to contain site name", msg.Subject)
	}
	for _, body := range []string{msg.TextBody, msg.HTMLBody} {
		for _, want := range []string{"Ana", "123456", "2 minutes"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q:\n%s", want, body)
			}
		}
	}
}

func TestBuildOTPEmail_EscapesName(t *testing.T) {
	msg := BuildOTPEmail(OTPEmailData{SiteName: "MTT", Name: "<b>x</b>", Code: "1"})
	if strings.Contains(msg.HTMLBody, "<b>x</b>") {
		t.Error("html body should escape the name")
	}
}

func TestSend_LogOnlyWhenHostEmpty(t *testing.T) {
	m := New(Config{}, zap.NewNop(), nil)
	called := false
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	if err := m.Send(Email{To: "a@example.com", Subject: "hi", TextBody: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if called {
		t.Error("smtp should not be used without a host")
	}
}

func TestSend_DeliversMultipart(t *testing.T) {
	m := New(Config{Host: "smtp.example.com", From: "noreply@example.com", FromName: "MTT"}, zap.NewNop(), nil)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Send(Email{To: "a@example.com", Subject: "Code", TextBody: "plain", HTMLBody: "<p>html</p>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr: got %q, want %q", gotAddr, "smtp.example.com:587")
	}
	if gotFrom != "noreply@example.com" {
		t.Errorf("from: got %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "a@example.com" {
		t.Errorf("to: got %v", gotTo)
	}
	raw := string(gotMsg)
	for _, want := range []string{"multipart/alternative", "plain", "<p>html</p>", `"MTT" <noreply@example.com>`} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSend_Errors(t *testing.T) {
	m := New(Config{Host: "smtp.example.com"}, zap.NewNop(), nil)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay down")
	}

	if err := m.Send(Email{}); err == nil {
		t.Error("expected error for empty recipient")
	}
	if err := m.Send(Email{To: "not an address"}); err == nil {
		t.Error("expected error for bad recipient")
	}
	if err := m.Send(Email{To: "a@example.com", TextBody: "x"}); err == nil {
		t.Error("expected relay error to be returned")
	}
}
