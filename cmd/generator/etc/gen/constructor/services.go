package services

// NewMailer builds the mailer from its sender address.
//
// @constructor
func NewMailer(
	sender string, // @inject named="mail.sender"
	transport Transport,
) *Mailer {
	return &Mailer{sender: sender, transport: transport}
}

// @constructor
func newHiddenMailer() *Mailer {
	return &Mailer{}
}

type Mailer struct {
	sender    string
	transport Transport
}

type Transport interface{}
