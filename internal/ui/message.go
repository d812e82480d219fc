package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/stream"
	"github.com/desertthunder/gourmet/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRecipesFetched MsgKind = iota
	MsgFavoritesFetched
	MsgFavoriteToggled
	MsgLikeUpdate
	MsgStreamState
	MsgBrowserOpened
)

type recipesFetched struct {
	recipes []models.Recipe
	cached  bool
	err     error
}

type favoriteToggled struct {
	recipeID string
	on       bool
	err      error
}

type streamState struct {
	seq   int
	state stream.State
}

// recipesFetchedMsg is the constructor for [MsgRecipesFetched]
func recipesFetchedMsg(recipes []models.Recipe, cached bool, err error) Msg {
	return Msg{kind: MsgRecipesFetched, data: recipesFetched{recipes, cached, err}}
}

// favoritesFetchedMsg is the constructor for [MsgFavoritesFetched]
func favoritesFetchedMsg(set tasks.FavoriteSet, err error) Msg {
	return Msg{
		kind: MsgFavoritesFetched,
		data: struct {
			set tasks.FavoriteSet
			err error
		}{set, err},
	}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(recipeID string, on bool, err error) Msg {
	return Msg{kind: MsgFavoriteToggled, data: favoriteToggled{recipeID, on, err}}
}

// likeUpdateMsg is the constructor for [MsgLikeUpdate]
func likeUpdateMsg(update models.LikeCount) Msg {
	return Msg{kind: MsgLikeUpdate, data: update}
}

// streamStateMsg is the constructor for [MsgStreamState]
func streamStateMsg(seq int, state stream.State) Msg {
	return Msg{kind: MsgStreamState, data: streamState{seq, state}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}
