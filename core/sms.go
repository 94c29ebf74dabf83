package core

type (
	SMSMessage struct {
		To   string // E.164 phone number
		Body string
	}

	// SMSService is any service that can send text messages.
	// No real gateway is integrated; implementations log the message.
	SMSService interface {
		SendMessages(messages ...*SMSMessage) error
	}
)

func (m *SMSMessage) HasRecipient() bool { return m.To != "" }
