package rules

// Activation converts a MessageContext into the variables a CEL program sees.
func Activation(m MessageContext) map[string]any {
	return map[string]any{
		"user": map[string]any{
			"id":         m.User.ID,
			"username":   m.User.Username,
			"first_name": m.User.FirstName,
		},
		"chat": map[string]any{
			"id":   m.Chat.ID,
			"type": m.Chat.Type,
		},
		"text":    m.Text,
		"command": m.Command,
	}
}
