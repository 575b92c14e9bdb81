// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// OTPEmailData holds data for the proposal verification email.
type OTPEmailData struct {
	SiteName  string
	Name      string
	Code      string
	ExpiresIn string // e.g., "2 minutes"
}

var otpHTML = template.Must(template.New("otp").Parse(otpHTMLTemplate))

// BuildOTPEmail creates the one-time code email with both HTML and text bodies.
func BuildOTPEmail(data OTPEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("%s: your verification code", data.SiteName),
		TextBody: buildOTPText(data),
		HTMLBody: buildOTPHTML(data),
	}
}

func buildOTPText(data OTPEmailData) string {
	var buf bytes.Buffer
	if data.Name != "" {
		fmt.Fprintf(&buf, "Hello %s,\n\n", data.Name)
	}
	fmt.Fprintf(&buf, "Use this code to confirm your proposal submission to %s: %s\n\n", data.SiteName, data.Code)
	fmt.Fprintf(&buf, "The code expires in %s.\n\n", data.ExpiresIn)
	buf.WriteString("If you did not submit a proposal, ignore this email.\n")
	return buf.String()
}

func buildOTPHTML(data OTPEmailData) string {
	var buf bytes.Buffer
	_ = otpHTML.Execute(&buf, data)
	return buf.String()
}

const otpHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.SiteName}} verification code</title>
</head>
<body style="margin: 0; padding: 24px; font-family: Arial, Helvetica, sans-serif; background-color: #f5f5f4; color: #292524;">
  <div style="max-width: 440px; margin: 0 auto; background-color: #ffffff; border-radius: 6px; padding: 28px;">
    <h2 style="margin: 0 0 16px; color: #0f766e;">{{.SiteName}}</h2>
    {{if .Name}}<p style="margin: 0 0 12px;">Hello {{.Name}},</p>{{end}}
    <p style="margin: 0 0 20px;">Use this code to confirm your proposal submission:</p>
    <p style="margin: 0 0 20px; text-align: center; font-size: 30px; font-weight: bold; letter-spacing: 6px; font-family: 'Courier New', monospace;">{{.Code}}</p>
    <p style="margin: 0; font-size: 13px; color: #78716c;">The code expires in {{.ExpiresIn}}. If you did not submit a proposal, ignore this email.</p>
  </div>
</body>
</html>`
