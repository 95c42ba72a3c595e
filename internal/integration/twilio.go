package integration

import (
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender sends SMS through Twilio.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewSMSSender returns an SMSSender.  Missing credentials leave it
// disabled.
func NewSMSSender(accountSID, authToken, from string) *SMSSender {
	if accountSID == "" || authToken == "" || from == "" {
		return &SMSSender{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{client: client, from: from}
}

// Enabled reports whether SMS can be sent.
func (s *SMSSender) Enabled() bool { return s.client != nil }

// Send delivers one SMS.
func (s *SMSSender) Send(to, body string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)
	_, err := s.client.Api.CreateMessage(params)
	return err
}
