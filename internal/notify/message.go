package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var emailTemplate = template.Must(template.New("email").Parse(`<html>
<body style="background: linear-gradient(135deg, #ff4d00, #ff8800); padding: 20px; text-align: center; color: white; font-family: Arial, sans-serif;">
  <div style="max-width: 600px; margin: auto; background: #222; padding: 20px; border-radius: 10px;">
    <h1 style="color: #ffcc00;">PizzaFlow</h1>
    <p style="font-size: 18px;">{{.Text}}</p>
    <hr style="border: 1px solid #ffcc00;">
    <p style="font-size: 14px;">Thank you for choosing us!</p>
  </div>
</body>
</html>`))

var statusText = map[string]string{
	"COOKING":   "is being prepared",
	"DELIVERY":  "is on its way",
	"COMPLETED": "has been delivered. Enjoy your meal!",
}

// RenderEmail wraps text in the branded HTML layout.
func RenderEmail(text string) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// StatusChangedMessage builds the email sent to a customer when their order
// moves to status.
func StatusChangedMessage(to string, orderID uint, status string) (Message, error) {
	text, ok := statusText[status]
	if !ok {
		text = "is now " + status
	}
	body, err := RenderEmail(fmt.Sprintf("Your order #%d %s", orderID, text))
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Order #%d status update", orderID),
		Body:    body,
		OrderID: orderID,
		Status:  status,
	}, nil
}
