// Package emailsvc sends the emails of the development backend.
package emailsvc

import (
	"log"
	"os"

	"github.com/trezcool/masomo-sync/core"
)

// New returns the email service selected by conf.Email.Backend.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Email.Backend == "sendgrid" {
		return NewSendgridService(conf, logger)
	}
	return NewConsoleService(conf, log.New(os.Stdout, "EMAIL : ", log.LstdFlags), logger)
}
