package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Lessons
	New      key.Binding
	Edit     key.Binding
	Complete key.Binding
	Paid     key.Binding
	Cancel   key.Binding
	Delete   key.Binding
	Earlier  key.Binding
	Later    key.Binding
	Longer   key.Binding
	Shorter  key.Binding

	// Views
	Students key.Binding
	Stats    key.Binding
	Settings key.Binding
	Search   key.Binding
	Command  key.Binding
	Help     key.Binding

	// Statistics
	CyclePeriod key.Binding
	PrevYear    key.Binding
	NextYear    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "вниз"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "вверх"),
		),
		PrevWeek: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "прошлая неделя"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "следующая неделя"),
		),
		Today: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "текущая неделя"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "назад"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "выход"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "новое занятие"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "изменить"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "проведено"),
		),
		Paid: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "оплачено"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "отменить"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "удалить"),
		),
		Earlier: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "на день раньше"),
		),
		Later: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "на день позже"),
		),
		Longer: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "длиннее на 15 мин"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "короче на 15 мин"),
		),
		Students: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "ученики"),
		),
		Stats: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "статистика"),
		),
		Settings: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "настройки"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "поиск"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "команды"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "справка"),
		),
		CyclePeriod: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "период"),
		),
		PrevYear: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "прошлый год"),
		),
		NextYear: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "следующий год"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.New, k.Edit,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevWeek, k.NextWeek, k.Today},
		{k.New, k.Edit, k.Complete, k.Paid, k.Cancel, k.Delete, k.Earlier, k.Later, k.Longer, k.Shorter},
		{k.Students, k.Search, k.Stats, k.CyclePeriod, k.PrevYear, k.NextYear},
		{k.Settings, k.Command, k.Help, k.Back, k.Quit},
	}
}
