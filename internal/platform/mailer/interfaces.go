package mailer

// Service sends player-facing booking mail. Implementations: MailerSend,
// plain SMTP, and a dev logger.
type Service interface {
	SendBookingConfirmation(toEmail, toName, tableName, startAt, duration, manageToken string) error
	SendReceipt(toEmail, toName, tableName, billedDuration, subtotal, tax, total string) error
}
