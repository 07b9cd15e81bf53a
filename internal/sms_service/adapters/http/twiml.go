package http

import "encoding/xml"

// MessagingResponse is the provider's reply markup document. Returning it
// as the webhook response body instructs the provider to deliver the
// wrapped text back to the sender.
type MessagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// RenderMessagingResponse wraps reply text in the provider's XML reply
// markup, escaping as needed. An empty text yields an empty Message element.
func RenderMessagingResponse(text string) ([]byte, error) {
	out, err := xml.Marshal(MessagingResponse{Message: text})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
