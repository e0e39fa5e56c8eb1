package blockfall

// Listener receives the controller's state changes. The presentation layer
// implements it to show or hide its screens.
type Listener interface {
	OnGameStart()
	OnGameOver()
	OnRowsCleared(rows []int)
	OnQuit()
}

// ListenerFuncs adapts optional functions to Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	GameStart   func()
	GameOver    func()
	RowsCleared func(rows []int)
	Quit        func()
}

func (l ListenerFuncs) OnGameStart() {
	if l.GameStart != nil {
		l.GameStart()
	}
}

func (l ListenerFuncs) OnGameOver() {
	if l.GameOver != nil {
		l.GameOver()
	}
}

func (l ListenerFuncs) OnRowsCleared(rows []int) {
	if l.RowsCleared != nil {
		l.RowsCleared(rows)
	}
}

func (l ListenerFuncs) OnQuit() {
	if l.Quit != nil {
		l.Quit()
	}
}
