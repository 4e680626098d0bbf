// Package reply models outbound chat messages independently of the
// messaging platform.
package reply

import "github.com/yanqian/glucobot/internal/domain/i18n"

// Kind tags the shape of a Reply.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindButtons
	KindList
)

// Option is a quick reply button.
type Option struct {
	ID    string
	Label i18n.Message
}

// Row is one selectable entry of a list section.
type Row struct {
	ID          string
	Title       i18n.Message
	Description i18n.Message
}

// Section groups list rows under a title.
type Section struct {
	Title i18n.Message
	Rows  []Row
}

// Reply is a text, button or list message. Lang, when set, overrides the
// recipient's stored language for this reply only.
type Reply struct {
	Kind     Kind
	Lang     i18n.Lang
	Header   i18n.Message
	Body     i18n.Message
	Button   i18n.Message
	Options  []Option
	Sections []Section
}

// Text builds a plain text reply.
func Text(body i18n.Message) Reply {
	return Reply{Kind: KindText, Body: body}
}

// Buttons builds a quick reply button message.
func Buttons(header, body i18n.Message, options ...Option) Reply {
	return Reply{Kind: KindButtons, Header: header, Body: body, Options: options}
}

// List builds a list message opened by button.
func List(header, body, button i18n.Message, sections ...Section) Reply {
	return Reply{Kind: KindList, Header: header, Body: body, Button: button, Sections: sections}
}

// In pins the reply to lang.
func (r Reply) In(lang i18n.Lang) Reply {
	r.Lang = lang
	return r
}

// LangOr returns the pinned language or fallback.
func (r Reply) LangOr(fallback i18n.Lang) i18n.Lang {
	if r.Lang != "" {
		return i18n.Normalize(r.Lang)
	}
	return i18n.Normalize(fallback)
}
