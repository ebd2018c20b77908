// Package webhook receives WhatsApp Cloud API deliveries: the GET
// verification handshake and POST message batches.
package webhook

// Payload is the envelope Meta posts to the webhook endpoint. Only the
// fields the flow reads are declared.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one business-account entry in a delivery.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one field change; messages arrive under field "messages".
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries the messages and sender contacts of one change.
type Value struct {
	Contacts []Contact `json:"contacts"`
	Messages []Message `json:"messages"`
}

// Contact identifies the sender.
type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile is the sender's WhatsApp profile.
type Profile struct {
	Name string `json:"name"`
}

// Message is one inbound message of any type.
type Message struct {
	From     string    `json:"from"`
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Text     *Text     `json:"text,omitempty"`
	Image    *MediaRef `json:"image,omitempty"`
	Document *Document `json:"document,omitempty"`
	Audio    *MediaRef `json:"audio,omitempty"`
	Video    *MediaRef `json:"video,omitempty"`
}

// Text is the body of a text message.
type Text struct {
	Body string `json:"body"`
}

// MediaRef points at an uploaded attachment.
type MediaRef struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
}

// Document is an attachment that carries an original filename.
type Document struct {
	MediaRef
	Filename string `json:"filename,omitempty"`
}

// TextContent returns the message text, falling back to a media caption.
func (m *Message) TextContent() string {
	if m.Text != nil && m.Text.Body != "" {
		return m.Text.Body
	}
	if m.Document != nil && m.Document.Caption != "" {
		return m.Document.Caption
	}
	if m.Image != nil && m.Image.Caption != "" {
		return m.Image.Caption
	}
	if m.Video != nil && m.Video.Caption != "" {
		return m.Video.Caption
	}
	return ""
}

// MediaID returns the attachment ID of whichever media slot is set.
func (m *Message) MediaID() string {
	switch {
	case m.Image != nil:
		return m.Image.ID
	case m.Document != nil:
		return m.Document.ID
	case m.Audio != nil:
		return m.Audio.ID
	case m.Video != nil:
		return m.Video.ID
	}
	return ""
}

// Filename returns the original filename for document attachments.
func (m *Message) Filename() string {
	if m.Document != nil {
		return m.Document.Filename
	}
	return ""
}

// senderName looks up the profile name for a message sender.
func (v *Value) senderName(waNumber string) string {
	for _, contact := range v.Contacts {
		if contact.WaID == waNumber {
			return contact.Profile.Name
		}
	}
	if len(v.Contacts) > 0 {
		return v.Contacts[0].Profile.Name
	}
	return ""
}
