package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// InvitationEmailData holds data for the project invitation email.
type InvitationEmailData struct {
	SiteName    string
	ProjectName string
	InviterName string
	Role        string
	Link        string
	ExpiresIn   string // e.g. "7 days"
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	SiteName  string
	Link      string
	ExpiresIn string
}

// BuildInvitationEmail creates an invitation email with HTML and text bodies.
func BuildInvitationEmail(to string, data InvitationEmailData) Email {
	inviter := data.InviterName
	if inviter == "" {
		inviter = "A teammate"
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s invited you to join %q on %s as %s.\n\n", inviter, data.ProjectName, data.SiteName, article(data.Role))
	text.WriteString("Open this link to accept:\n")
	text.WriteString(data.Link + "\n\n")
	fmt.Fprintf(&text, "The invitation expires in %s.\n\n", data.ExpiresIn)
	text.WriteString("If you were not expecting this invitation, you can ignore this email.\n")

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("You're invited to %s on %s", data.ProjectName, data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(layoutData{
			SiteName: data.SiteName,
			Lead:     fmt.Sprintf("%s invited you to join %s as %s.", inviter, data.ProjectName, article(data.Role)),
			Button:   "Accept invitation",
			Link:     data.Link,
			Expiry:   "This invitation expires in " + data.ExpiresIn + ".",
			Footer:   "If you were not expecting this invitation, you can ignore this email.",
		}),
	}
}

// BuildPasswordResetEmail creates a password reset email with HTML and text bodies.
func BuildPasswordResetEmail(to string, data PasswordResetEmailData) Email {
	var text strings.Builder
	fmt.Fprintf(&text, "We received a request to reset your %s password.\n\n", data.SiteName)
	text.WriteString("Open this link to choose a new password:\n")
	text.WriteString(data.Link + "\n\n")
	fmt.Fprintf(&text, "The link expires in %s.\n\n", data.ExpiresIn)
	text.WriteString("If you did not request a reset, you can ignore this email.\n")

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(layoutData{
			SiteName: data.SiteName,
			Lead:     "We received a request to reset your password.",
			Button:   "Reset password",
			Link:     data.Link,
			Expiry:   "This link expires in " + data.ExpiresIn + ".",
			Footer:   "If you did not request a reset, you can ignore this email.",
		}),
	}
}

func article(role string) string {
	switch role {
	case "":
		return "a member"
	case "editor", "owner":
		return "an " + role
	default:
		return "a " + role
	}
}

type layoutData struct {
	SiteName string
	Lead     string
	Button   string
	Link     string
	Expiry   string
	Footer   string
}

var layout = template.Must(template.New("email").Parse(layoutHTML))

func render(data layoutData) string {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.SiteName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 28px 32px 20px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #6366f1;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 28px; font-size: 16px; color: #374151; line-height: 1.5;">{{.Lead}}</p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background-color: #6366f1; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">{{.Button}}</a>
                  </td>
                </tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">{{.Expiry}}</p>
              <p style="margin: 12px 0 0; font-size: 12px; color: #9ca3af; text-align: center; word-break: break-all;">{{.Link}}</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 20px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">{{.Footer}}</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
