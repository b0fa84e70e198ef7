package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageAPI interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
	FetchMessage(sid string, params *openapi.FetchMessageParams) (*openapi.ApiV2010Message, error)
}

type Twilio struct {
	api messageAPI
}

func NewTwilio(accountSID, authToken string) *Twilio {
	c := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{api: c.Api}
}

func (t *Twilio) Name() string { return "twilio" }

func (t *Twilio) Send(ctx context.Context, msg Outbound) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(msg.From)
	params.SetBody(msg.Body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return Receipt{}, twilioError(err)
	}
	if resp == nil || resp.Sid == nil || *resp.Sid == "" {
		return Receipt{}, &Error{Message: "missing sid in twilio response"}
	}

	r := Receipt{MessageID: *resp.Sid}
	if resp.Status != nil {
		r.Status = *resp.Status
	}
	return r, nil
}

func (t *Twilio) Fetch(ctx context.Context, messageID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := t.api.FetchMessage(messageID, &openapi.FetchMessageParams{})
	if err != nil {
		return "", twilioError(err)
	}
	if resp == nil || resp.Status == nil {
		return "", &Error{Message: fmt.Sprintf("missing status for %s", messageID)}
	}
	return *resp.Status, nil
}

func twilioError(err error) error {
	var rest *twclient.TwilioRestError
	if errors.As(err, &rest) {
		return &Error{Code: rest.Code, Status: rest.Status, Message: rest.Message}
	}
	return &Error{Message: err.Error()}
}
