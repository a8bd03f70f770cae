package view

import "github.com/tanema/gween"

type Action struct {
	OnChange func(float32)
	onFinish []func()
}

func (a *Action) AddOnFinish(f func()) {
	if a.onFinish == nil {
		a.onFinish = make([]func(), 0)
	}
	a.onFinish = append(a.onFinish, f)
}

// Tweens holds the running tweens with the action each one drives.
type Tweens map[*gween.Tween]Action

// Update advances every running tween by dt and retires finished ones.
func (ts Tweens) Update(dt float32) {
	for t, a := range ts {
		curr, finished := t.Update(dt)
		if a.OnChange != nil {
			a.OnChange(curr)
		}
		if finished {
			for _, onFinish := range a.onFinish {
				onFinish()
			}
			delete(ts, t)
		}
	}
}

func (ts Tweens) Start(t *gween.Tween, a Action) {
	ts[t] = a
}

// Restart drops running tweens without finishing them, so only the latest
// one drives its target.
func (ts Tweens) Restart(t *gween.Tween, a Action) {
	for running := range ts {
		delete(ts, running)
	}
	ts.Start(t, a)
}
