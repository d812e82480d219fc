package ui

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/services"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/desertthunder/gourmet/internal/stream"
	"github.com/desertthunder/gourmet/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RecipeListView ViewState = iota
	RecipeDetailView
)

const statePollInterval = 500 * time.Millisecond

// LikeSource builds an unstarted like counter for a recipe.
type LikeSource func(recipeID string) *tasks.LikeCounter

// Deps holds what the TUI needs from the rest of the application.
type Deps struct {
	Service services.RecipeService
	Engine  *tasks.Engine
	Session models.Session
	Likes   LikeSource
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	service services.RecipeService
	engine  *tasks.Engine
	session models.Session
	likes   LikeSource
	opener  func(string) error

	width  int
	height int

	recipes    []models.Recipe
	categories []string
	filter     tasks.CategoryFilter
	featured   string
	favorites  tasks.FavoriteSet
	cached     bool
	recipeList list.Model

	selected  *models.Recipe
	counter   *tasks.LikeCounter
	likeDone  chan struct{}
	detailSeq int
	likeCount int
	likeKnown bool
	state     stream.State

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	recipeList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	recipeList.Title = "Recipes"
	recipeList.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		view:       RecipeListView,
		service:    deps.Service,
		engine:     deps.Engine,
		session:    deps.Session,
		likes:      deps.Likes,
		opener:     shared.OpenBrowser,
		favorites:  tasks.FavoriteSet{},
		recipeList: recipeList,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by fetching recipes and, when logged in, favorites.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchRecipes(), m.fetchFavorites())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recipeList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RecipeListView:
			return m.handleListKeys(msg)
		case RecipeDetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.recipeList, cmd = m.recipeList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRecipesFetched:
		data := msg.data.(recipesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.recipes = data.recipes
		m.cached = data.cached
		m.categories = tasks.Categories(data.recipes)
		m.featured = ""
		if r, ok := tasks.Featured(data.recipes); ok {
			m.featured = r.ID
		}
		return m, m.refreshList()

	case MsgFavoritesFetched:
		data := msg.data.(struct {
			set tasks.FavoriteSet
			err error
		})
		if data.err != nil {
			m.status = fmt.Sprintf("Could not load favorites: %v", data.err)
			return m, nil
		}
		if data.set != nil {
			m.favorites = data.set
		}
		return m, m.refreshList()

	case MsgFavoriteToggled:
		data := msg.data.(favoriteToggled)
		if data.err != nil {
			m.status = fmt.Sprintf("Favorite update failed: %v", data.err)
			return m, nil
		}
		if data.on {
			m.favorites[data.recipeID] = struct{}{}
			m.status = "Added to favorites"
		} else {
			delete(m.favorites, data.recipeID)
			m.status = "Removed from favorites"
		}
		return m, m.refreshList()

	case MsgLikeUpdate:
		update := msg.data.(models.LikeCount)
		if m.counter == nil || update.RecipeID != m.counter.RecipeID() {
			return m, nil
		}
		m.likeCount, m.likeKnown = update.Count, true
		return m, m.waitForLike()

	case MsgStreamState:
		data := msg.data.(streamState)
		if m.counter == nil || data.seq != m.detailSeq {
			return m, nil
		}
		m.state = data.state
		return m, m.pollState()

	case MsgBrowserOpened:
		if err, _ := msg.data.(error); err != nil {
			m.status = fmt.Sprintf("Could not open browser: %v", err)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RecipeListView:
		return m.renderList()
	case RecipeDetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recipeList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recipeList, cmd = m.recipeList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.recipeList.SelectedItem().(recipeItem); ok {
			return m, m.openDetail(item.recipe)
		}
		return m, nil
	case key.Matches(msg, m.keys.category):
		idx := int(msg.Runes[0] - '1')
		if idx < len(m.categories) {
			m.filter.Toggle(m.categories[idx])
			return m, m.refreshList()
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.filter.Clear()
		return m, m.refreshList()
	case key.Matches(msg, m.keys.refresh):
		m.status = "Refreshing..."
		return m, m.fetchRecipes()
	}

	var cmd tea.Cmd
	m.recipeList, cmd = m.recipeList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.closeDetail()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeDetail()
		m.view = RecipeListView
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		return m, m.toggleFavorite()
	case key.Matches(msg, m.keys.reconnect):
		if m.counter != nil {
			m.counter.Start()
			m.state = m.counter.State()
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		return m, m.openBrowser()
	}
	return m, nil
}

// openDetail shows recipe and subscribes to its like stream.
func (m *Model) openDetail(recipe models.Recipe) tea.Cmd {
	m.closeDetail()
	m.view = RecipeDetailView
	m.selected = &recipe
	m.status = ""
	m.likeCount, m.likeKnown = 0, false

	if m.likes == nil {
		return nil
	}
	m.detailSeq++
	m.counter = m.likes(recipe.ID)
	m.likeDone = make(chan struct{})
	m.counter.Start()
	m.state = m.counter.State()
	return tea.Batch(m.waitForLike(), m.pollState())
}

// closeDetail stops the like subscription of the open recipe, if any.
func (m *Model) closeDetail() {
	if m.counter != nil {
		m.counter.Stop()
		m.counter = nil
	}
	if m.likeDone != nil {
		close(m.likeDone)
		m.likeDone = nil
	}
	m.selected = nil
}

func (m *Model) refreshList() tea.Cmd {
	visible := m.filter.Apply(m.recipes)
	items := make([]list.Item, len(visible))
	for i, r := range visible {
		items[i] = recipeItem{recipe: r, favorite: m.favorites.Has(r.ID), featured: r.ID == m.featured}
	}

	m.recipeList.Title = "Recipes"
	if c := m.filter.Selected(); c != "" {
		m.recipeList.Title = fmt.Sprintf("Recipes • %s", c)
	}
	return m.recipeList.SetItems(items)
}

func (m *Model) fetchRecipes() tea.Cmd {
	return func() tea.Msg {
		recipes, cached, err := m.engine.Recipes(m.ctx, false, nil)
		return recipesFetchedMsg(recipes, cached, err)
	}
}

func (m *Model) fetchFavorites() tea.Cmd {
	if !m.session.Authenticated() {
		return nil
	}
	return func() tea.Msg {
		_, set, err := m.engine.Favorites(m.ctx, nil)
		return favoritesFetchedMsg(set, err)
	}
}

func (m *Model) toggleFavorite() tea.Cmd {
	if m.selected == nil {
		return nil
	}
	if !m.session.Authenticated() {
		m.status = "Log in with `gourmet auth login` to manage favorites"
		return nil
	}

	recipeID := m.selected.ID
	set := maps.Clone(m.favorites)
	return func() tea.Msg {
		on, err := m.engine.ToggleFavorite(m.ctx, set, m.session.Username, recipeID)
		return favoriteToggledMsg(recipeID, on, err)
	}
}

func (m *Model) openBrowser() tea.Cmd {
	if m.selected == nil || m.service == nil {
		return nil
	}
	url := m.service.RecipeWebURL(m.selected.ID)
	opener := m.opener
	return func() tea.Msg {
		return browserOpenedMsg(opener(url))
	}
}

// waitForLike blocks until the open counter reports a new total or the detail view closes.
func (m *Model) waitForLike() tea.Cmd {
	if m.counter == nil {
		return nil
	}
	updates, done := m.counter.Updates(), m.likeDone
	return func() tea.Msg {
		select {
		case u := <-updates:
			return likeUpdateMsg(u)
		case <-done:
			return nil
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) pollState() tea.Cmd {
	if m.counter == nil {
		return nil
	}
	counter, seq := m.counter, m.detailSeq
	return tea.Tick(statePollInterval, func(time.Time) tea.Msg {
		return streamStateMsg(seq, counter.State())
	})
}

func (m *Model) renderList() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress R to retry, q to quit", m.err))
	}

	var b strings.Builder
	b.WriteString(m.recipeList.View())

	if len(m.categories) > 0 {
		b.WriteString("\n\n")
		for i, c := range m.categories {
			label := fmt.Sprintf("%d %s", i+1, c)
			b.WriteString(styles.category(label, c == m.filter.Selected()))
			b.WriteString("  ")
		}
	}

	if m.cached {
		b.WriteString("\n" + styles.warn.Render("Offline: showing cached recipes"))
	}
	if m.status != "" {
		b.WriteString("\n" + styles.help.Render(m.status))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.category, m.keys.clear, m.keys.refresh, m.keys.quit}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderDetail() string {
	r := m.selected
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(r.Name))
	b.WriteString("\n")

	meta := []string{}
	if r.WhenToEat != "" {
		meta = append(meta, r.WhenToEat)
	}
	meta = append(meta, shared.FormatMinutes(r.Duration()))
	if r.Servings > 0 {
		meta = append(meta, fmt.Sprintf("%d servings", r.Servings))
	}
	if r.Difficulty != "" {
		meta = append(meta, r.Difficulty)
	}
	b.WriteString(strings.Join(meta, " • "))
	b.WriteString("\n\n")

	b.WriteString(m.renderLikes())
	if m.favorites.Has(r.ID) {
		b.WriteString("  " + styles.ok.Render("♥ favorite"))
	}
	b.WriteString("\n")

	if r.Description != "" {
		b.WriteString("\n" + r.Description + "\n")
	}
	if len(r.Ingredients) > 0 {
		b.WriteString("\nIngredients\n")
		for _, ing := range r.Ingredients {
			b.WriteString("  • " + ing + "\n")
		}
	}
	if r.Instructions != "" {
		b.WriteString("\nInstructions\n" + r.Instructions + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + styles.help.Render(m.status) + "\n")
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.favorite, m.keys.open, m.keys.reconnect, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderLikes() string {
	likes := "♥ …"
	if m.likeKnown {
		likes = fmt.Sprintf("♥ %d likes", m.likeCount)
	}

	switch m.state {
	case stream.StateWaiting, stream.StateConnecting:
		if m.likeKnown {
			return likes + " " + styles.warn.Render("(reconnecting)")
		}
		return likes + " " + styles.help.Render("(connecting)")
	case stream.StateDormant:
		return likes + " " + styles.err.Render("(offline, r to retry)")
	default:
		return styles.ok.Render(likes)
	}
}
