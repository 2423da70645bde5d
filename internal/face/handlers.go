package face

import (
	"github.com/rook-computer/weatherface/internal/input"
	"github.com/rook-computer/weatherface/internal/render"
	"github.com/rook-computer/weatherface/internal/weathersync"
)

func (e *Engine) onCreate() {
	if e.destroyed || e.created {
		return
	}
	e.created = true
	e.store.UpdateFace(e.face)
	e.logger.Infof("face", "created")
}

func (e *Engine) onDestroy() {
	if e.destroyed {
		return
	}
	e.redraw.Clear()
	e.stopListener()
	e.destroyed = true
	e.logger.Infof("face", "destroyed")
}

func (e *Engine) onVisibility(visible bool) {
	if e.destroyed {
		return
	}
	changed := e.face.Visible != visible
	e.face.Visible = visible
	e.store.UpdateFace(e.face)
	if changed {
		e.logger.Infof("face", "visible=%v phase=%s", visible, e.face.Phase())
		if visible {
			e.startListener()
		} else {
			e.stopListener()
		}
	}
	e.invalidate(changed)
}

func (e *Engine) onAmbient(ambient bool) {
	if e.destroyed {
		return
	}
	changed := e.face.Ambient != ambient
	e.face.Ambient = ambient
	e.store.UpdateFace(e.face)
	if changed {
		e.logger.Infof("face", "ambient=%v antialias=%v", ambient, e.face.AntiAlias())
		if e.ambientHook != nil {
			e.ambientHook(ambient)
		}
	}
	e.invalidate(changed)
}

func (e *Engine) onProperties(p Properties) {
	if e.destroyed {
		return
	}
	changed := e.face.LowBitAmbient != p.LowBitAmbient
	e.face.LowBitAmbient = p.LowBitAmbient
	e.store.UpdateFace(e.face)
	// Only an ambient face draws differently with low-bit set.
	if changed && e.face.Ambient {
		e.drawIfVisible()
	}
}

func (e *Engine) onTimeTick() {
	if e.destroyed {
		return
	}
	e.drawIfVisible()
}

func (e *Engine) onTap(tap input.TapEvent) {
	if e.destroyed {
		return
	}
	if tap.Type == input.Tap {
		e.logger.Infof("face", "tap at %d,%d", tap.X, tap.Y)
	}
	e.drawIfVisible()
}

func (e *Engine) onTheme(theme render.Theme) {
	if e.destroyed {
		return
	}
	e.theme = theme
	e.drawIfVisible()
}

func (e *Engine) onRedraw(token uint64) {
	if e.destroyed {
		return
	}
	if e.redraw.Fire(token, e.face.TimerActive()) {
		e.draw()
	}
}

// invalidate recomputes the redraw timer and, when changed is set, redraws
// once. An active timer is armed to fire immediately, and that fire is the
// redraw.
func (e *Engine) invalidate(changed bool) {
	active := e.face.TimerActive()
	e.redraw.Update(active)
	if changed && !active {
		e.drawIfVisible()
	}
}

func (e *Engine) onWeather(u weathersync.Update) {
	if e.destroyed {
		return
	}
	ref := ""
	if u.HasIcon {
		ref = u.Icon.Digest
	}
	e.store.ReplaceTemperatures(u.HighTemp, u.LowTemp, ref, e.clock.Now())
	e.logger.Infof("weather", "high=%q low=%q icon=%q", u.HighTemp, u.LowTemp, shortRef(ref))

	e.latestIcon = ref
	if u.HasIcon && ref != e.loadedIcon && e.icons != nil {
		e.icons.FetchAsync(e.ctx, u.Icon, func(r weathersync.IconResult) {
			e.post(func() { e.onIcon(r) })
		})
	}
	e.drawIfVisible()
}

func (e *Engine) onIcon(r weathersync.IconResult) {
	if e.destroyed {
		return
	}
	if r.Ref != e.latestIcon {
		e.logger.Infof("weather", "discarding icon %s, superseded by %s", shortRef(r.Ref), shortRef(e.latestIcon))
		return
	}
	if r.Err != nil {
		e.logger.Errorf("weather", "icon fetch %s failed: %v", shortRef(r.Ref), r.Err)
		return
	}
	if r.Shared {
		e.logger.Infof("weather", "icon %s decoded once for several requests", shortRef(r.Ref))
	}
	e.store.SetIcon(r.Icon)
	e.loadedIcon = r.Ref
	e.drawIfVisible()
}

func (e *Engine) startListener() {
	if e.listening || e.listener == nil {
		return
	}
	e.listener.Start(e.ctx)
	e.listening = true
}

func (e *Engine) stopListener() {
	if !e.listening {
		return
	}
	e.listener.Stop()
	e.listening = false
}

func (e *Engine) drawIfVisible() {
	if e.face.Visible {
		e.draw()
	}
}

func (e *Engine) draw() {
	snapshot := e.store.Snapshot()
	frame := render.BuildFrame(e.face, snapshot.Weather, e.clock.Now(), e.theme, e.formatter)
	if err := e.renderer.Draw(frame); err != nil {
		e.logger.Errorf("render", "draw failed: %v", err)
		return
	}
	e.store.CountFrame()
}

func shortRef(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}
