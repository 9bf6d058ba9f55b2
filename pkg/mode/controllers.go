package mode

import (
	"math"
	"time"
)

// passive observes only.
type passive struct {
	mode Mode
}

func (p *passive) Mode() Mode                        { return p.mode }
func (p *passive) Update(Input, time.Time) []Command { return nil }
func (p *passive) NeedsFrames() bool                 { return false }
func (p *passive) Reset()                            {}
func (p *passive) State() RuntimeState               { return RuntimeState{Mode: p.mode, Phase: PhasePlaying} }
func (p *passive) ResolvePopup(PopupChoice, time.Time) ([]Command, error) {
	return nil, ErrNoPopup
}

// nonIntrusive asks the subject via a popup. The cooldown runs from the
// moment the popup is dismissed.
type nonIntrusive struct {
	cfg          Config
	popupVisible bool
	lastPopupAt  time.Time
}

func (n *nonIntrusive) Mode() Mode { return NonIntrusive }

func (n *nonIntrusive) Update(in Input, now time.Time) []Command {
	if n.popupVisible || !n.cfg.unfocused(in) {
		return nil
	}
	if !n.lastPopupAt.IsZero() && now.Sub(n.lastPopupAt) < n.cfg.Cooldown {
		return nil
	}
	n.popupVisible = true
	return cmds(CmdShowPopup)
}

func (n *nonIntrusive) ResolvePopup(choice PopupChoice, now time.Time) ([]Command, error) {
	if !n.popupVisible {
		return nil, ErrNoPopup
	}
	var out []Command
	switch choice {
	case ChoicePause:
		out = cmds(CmdHidePopup, CmdPause)
	case ChoiceContinue:
		out = cmds(CmdHidePopup)
	default:
		return nil, ErrUnknownChoice
	}
	n.popupVisible = false
	n.lastPopupAt = now
	return out, nil
}

func (n *nonIntrusive) NeedsFrames() bool { return n.popupVisible }

func (n *nonIntrusive) State() RuntimeState {
	return RuntimeState{
		Mode:         NonIntrusive,
		Phase:        PhasePlaying,
		PopupVisible: n.popupVisible,
		LastPopupAt:  n.lastPopupAt,
	}
}

func (n *nonIntrusive) Reset() {
	n.popupVisible = false
	n.lastPopupAt = time.Time{}
}

// intrusive pauses playback on unfocus and resumes after a debounced
// recovery: Playing -> Paused -> Recovering -> Playing.
type intrusive struct {
	cfg             Config
	paused          bool
	lastPauseAt     time.Time
	recoveringSince time.Time
}

func (i *intrusive) Mode() Mode { return Intrusive }

func (i *intrusive) Update(in Input, now time.Time) []Command {
	unfocused := i.cfg.unfocused(in)

	if !i.paused {
		if !unfocused {
			return nil
		}
		if !i.lastPauseAt.IsZero() && now.Sub(i.lastPauseAt) < i.cfg.Cooldown {
			return nil
		}
		i.paused = true
		i.lastPauseAt = now
		i.recoveringSince = time.Time{}
		return cmds(CmdPlayWarning, CmdShowOverlay, CmdDisableControls, CmdPause)
	}

	if unfocused {
		i.recoveringSince = time.Time{}
		return nil
	}
	if i.recoveringSince.IsZero() {
		i.recoveringSince = now
		return nil
	}
	if now.Sub(i.recoveringSince) < i.cfg.Recovery {
		return nil
	}
	i.paused = false
	i.recoveringSince = time.Time{}
	return cmds(CmdHideOverlay, CmdEnableControls, CmdResume)
}

func (i *intrusive) ResolvePopup(PopupChoice, time.Time) ([]Command, error) {
	return nil, ErrNoPopup
}

func (i *intrusive) NeedsFrames() bool { return i.paused }

func (i *intrusive) State() RuntimeState {
	phase := PhasePlaying
	if i.paused {
		phase = PhasePaused
		if !i.recoveringSince.IsZero() {
			phase = PhaseRecovering
		}
	}
	return RuntimeState{
		Mode:            Intrusive,
		Phase:           phase,
		LastPauseAt:     i.lastPauseAt,
		RecoveringSince: i.recoveringSince,
	}
}

func (i *intrusive) Reset() {
	i.paused = false
	i.lastPauseAt = time.Time{}
	i.recoveringSince = time.Time{}
}

// legacy is the earlier binary behavior: optional pause while the face is
// absent, and a volume boost while yawning or looking away. No cooldown or
// recovery debounce applies.
type legacy struct {
	mode           Mode
	cfg            Config
	pauseOnAbsence bool
	paused         bool
	boosted        bool
}

func (l *legacy) Mode() Mode { return l.mode }

func (l *legacy) Update(in Input, _ time.Time) []Command {
	var out []Command

	if l.pauseOnAbsence {
		switch {
		case !in.FacePresent && !l.paused:
			l.paused = true
			out = append(out, cmds(CmdShowOverlay, CmdPause)...)
		case in.FacePresent && l.paused:
			l.paused = false
			out = append(out, cmds(CmdHideOverlay, CmdResume)...)
		}
	}

	boost := in.Yawning || in.GazeAway
	if boost != l.boosted {
		l.boosted = boost
		volume := l.cfg.BaseVolume
		if boost {
			volume = math.Min(l.cfg.BaseVolume+l.cfg.VolumeBoost, 1)
		}
		out = append(out, Command{Type: CmdSetVolume, Volume: volume})
	}
	return out
}

func (l *legacy) ResolvePopup(PopupChoice, time.Time) ([]Command, error) {
	return nil, ErrNoPopup
}

func (l *legacy) NeedsFrames() bool { return l.paused }

func (l *legacy) State() RuntimeState {
	phase := PhasePlaying
	if l.paused {
		phase = PhasePaused
	}
	return RuntimeState{Mode: l.mode, Phase: phase, VolumeBoosted: l.boosted}
}

func (l *legacy) Reset() {
	l.paused = false
	l.boosted = false
}
