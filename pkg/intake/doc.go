/*
Package intake is the order email service: it accepts the order requests
posted by the dispatcher and turns each one into two emails, one for the sales
team and a confirmation for the customer.

# Request handling

  - POST /send-order only; CORS preflight is answered by the cors middleware.
  - Each client IP may post 5 orders per 15 minutes.
  - At most 5 attachments with 4.5 MB of decoded data in total.
  - Validation failures answer 400 with every message in "details".

Every interpolated field is escaped by html/template. Plain-text parts are
stripped of markup with bluemonday.
*/
package intake
