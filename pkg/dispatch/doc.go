// Package dispatch turns a confirmed order draft into its outbound artifacts.
//
// Summary renders the plain-text order that is emailed to sales.
// WhatsAppMessage and WhatsAppLink build the deep link the customer opens.
// Dispatcher ties both to the collaborators: the email path is best effort
// and never blocks completion, the WhatsApp path is fire-and-forget.
package dispatch
