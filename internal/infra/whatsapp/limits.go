package whatsapp

// Interactive message limits enforced by the Cloud API.
const (
	limitText         = 4096
	limitButtonTitle  = 20
	limitHeader       = 60
	limitBody         = 1024
	limitListButton   = 20
	limitSectionTitle = 24
	limitRowTitle     = 24
	limitRowDesc      = 72
	maxButtons        = 3
	maxSections       = 10
	maxRows           = 10
	ellipsis          = "..."
)

// truncate cuts s to limit runes, ending with an ellipsis when shortened.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

func (m ButtonMessage) clamp() ButtonMessage {
	out := ButtonMessage{Header: truncate(m.Header, limitHeader), Body: truncate(m.Body, limitBody)}
	for i, b := range m.Buttons {
		if i == maxButtons {
			break
		}
		out.Buttons = append(out.Buttons, Button{ID: b.ID, Title: truncate(b.Title, limitButtonTitle)})
	}
	return out
}

func (m ListMessage) clamp() ListMessage {
	out := ListMessage{
		Header: truncate(m.Header, limitHeader),
		Body:   truncate(m.Body, limitBody),
		Button: truncate(m.Button, limitListButton),
	}
	for i, s := range m.Sections {
		if i == maxSections {
			break
		}
		section := Section{Title: truncate(s.Title, limitSectionTitle)}
		for j, r := range s.Rows {
			if j == maxRows {
				break
			}
			section.Rows = append(section.Rows, Row{
				ID:          r.ID,
				Title:       truncate(r.Title, limitRowTitle),
				Description: truncate(r.Description, limitRowDesc),
			})
		}
		out.Sections = append(out.Sections, section)
	}
	return out
}
