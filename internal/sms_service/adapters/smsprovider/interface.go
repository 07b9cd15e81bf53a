package smsprovider

import (
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageCreator is the slice of the provider SDK the sender needs.
// *twilio.RestClient's Api service satisfies it; tests substitute a double.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}
