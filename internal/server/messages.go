package server

import (
	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/session"
)

type StartSessionRequest struct {
	App string `json:"app" validate:"required,oneof=kana numbers vocab phrases"`
	// Mode defaults to the saved mode of the app.
	Mode string `json:"mode,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

type SetSelectionRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	// RowIDs replaces the selection. An empty list is a valid selection.
	RowIDs []string `json:"rowIds" validate:"dive,required"`
}

type GradeRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Correct   bool   `json:"correct"`
}

type AnswerRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Input     string `json:"input" validate:"required"`
}

type UnlockBatchRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	// Kind restricts the unlocked row to a kind, e.g. word or phrase.
	Kind string `json:"kind,omitempty"`
}

type SwitchModeRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Mode      string `json:"mode" validate:"required"`
}

type RowMessage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"`
	Size  int    `json:"size"`
}

type CardMessage struct {
	catalog.Entry
	Repetitions    int     `json:"repetitions"`
	Interval       float64 `json:"interval"`
	EasinessFactor float64 `json:"easinessFactor"`
	DueCycle       float64 `json:"dueCycle"`
	Right          int     `json:"right"`
	Wrong          int     `json:"wrong"`
}

type OutcomeMessage struct {
	Entry   catalog.Entry `json:"entry"`
	Correct bool          `json:"correct"`
}

type ViewMessage struct {
	App       string          `json:"app"`
	Mode      string          `json:"mode"`
	State     string          `json:"state"`
	Card      *CardMessage    `json:"card,omitempty"`
	Previous  *OutcomeMessage `json:"previous,omitempty"`
	Cycle     int             `json:"cycle"`
	Stats     progress.Stats  `json:"stats"`
	Accuracy  int             `json:"accuracy"`
	Selection []string        `json:"selection"`
	PoolSize  int             `json:"poolSize"`
}

type SessionResponse struct {
	SessionID string       `json:"sessionId"`
	View      ViewMessage  `json:"view"`
	Modes     []string     `json:"modes,omitempty"`
	Rows      []RowMessage `json:"rows,omitempty"`
}

type UnlockBatchResponse struct {
	SessionID string      `json:"sessionId"`
	Row       RowMessage  `json:"row"`
	View      ViewMessage `json:"view"`
}

type EndSessionResponse struct{}

// toViewMessage hides the answer of a card until it is revealed.
func toViewMessage(view session.View) ViewMessage {
	message := ViewMessage{
		App:       view.App,
		Mode:      view.Mode,
		State:     string(view.State),
		Cycle:     view.Cycle,
		Stats:     view.Stats,
		Accuracy:  view.Accuracy(),
		Selection: view.Selection,
		PoolSize:  view.PoolSize,
	}
	if message.Selection == nil {
		message.Selection = []string{}
	}
	if card := view.Card; card != nil {
		entry := card.Entry
		if view.State != session.StateRevealed {
			entry.Answer = ""
			entry.Reading = ""
			entry.Alternate = ""
			entry.Note = ""
		}
		message.Card = &CardMessage{
			Entry:          entry,
			Repetitions:    card.State.Repetitions,
			Interval:       card.State.Interval,
			EasinessFactor: card.State.EasinessFactor,
			DueCycle:       card.State.DueCycle,
			Right:          card.Tally.Right,
			Wrong:          card.Tally.Wrong,
		}
	}
	if previous := view.Previous; previous != nil {
		message.Previous = &OutcomeMessage{Entry: previous.Entry, Correct: previous.Correct}
	}
	return message
}

func toRowMessage(row catalog.Row) RowMessage {
	return RowMessage{ID: row.ID, Label: row.Label, Kind: row.Kind, Size: len(row.Entries)}
}

func toRowMessages(cat catalog.Catalog) []RowMessage {
	rows := cat.Rows()
	messages := make([]RowMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toRowMessage(row))
	}
	return messages
}
