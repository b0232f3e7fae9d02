// Package presentation holds the voice Q&A view state, the controller that
// drives speech capture and relay calls, and a text renderer.
package presentation

import "ev-voice-shop/internal/domain"

// Phase is the listening state of the page.
type Phase int

const (
	// PhaseUnsupported is terminal: speech capture is unavailable.
	PhaseUnsupported Phase = iota
	PhaseReady
	PhaseListening
)

func (p Phase) String() string {
	switch p {
	case PhaseUnsupported:
		return "unsupported"
	case PhaseReady:
		return "ready"
	case PhaseListening:
		return "listening"
	default:
		return "unknown"
	}
}

// Status lines shown to the user.
const (
	StatusUnsupported     = "เบราว์เซอร์นี้ไม่รองรับ Web Speech API (แนะนำ Chrome เท่านั้น)"
	StatusReady           = "พร้อมพูด"
	StatusListening       = "กำลังฟัง... พูดคำถามได้เลย"
	StatusStopped         = "หยุดฟังแล้ว"
	StatusSending         = "ได้ข้อความแล้ว กำลังส่งไปถามระบบ..."
	StatusDone            = "เสร็จสิ้น"
	StatusAnsweredError   = "เกิดข้อผิดพลาด"
	StatusConnectionError = "เกิดข้อผิดพลาดในการเชื่อมต่อ Server"
	statusRecognitionFmt  = "เกิดข้อผิดพลาด: "
)

// View is an immutable snapshot of the page. Every transition returns a new
// View; Result is always replaced, never patched.
type View struct {
	Phase   Phase
	Status  string
	Pending bool
	Result  domain.QueryResult
}

// InitialView returns the first view for a host with or without speech
// capture.
func InitialView(available bool) View {
	if !available {
		return View{Phase: PhaseUnsupported, Status: StatusUnsupported}
	}
	return View{Phase: PhaseReady, Status: StatusReady}
}

// Cleared is the view right after the user asks to start listening.
func (v View) Cleared() View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	return View{Phase: v.Phase, Status: v.Status}
}

func (v View) Started() View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	return View{Phase: PhaseListening, Status: StatusListening, Pending: v.Pending, Result: v.Result}
}

// Ended leaves the listening phase. Only a plain listening status is
// replaced; sending, answer and error statuses stay visible.
func (v View) Ended() View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	status := v.Status
	if status == StatusListening {
		status = StatusStopped
	}
	return View{Phase: PhaseReady, Status: status, Pending: v.Pending, Result: v.Result}
}

func (v View) RecognitionFailed(code string) View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	if code == "" {
		code = "unknown"
	}
	return View{Phase: PhaseReady, Status: statusRecognitionFmt + code, Result: domain.QueryResult{Error: code}}
}

func (v View) Transcribed(transcript string) View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	return View{Phase: v.Phase, Status: StatusSending, Pending: true, Result: domain.QueryResult{Transcript: &transcript}}
}

func (v View) Answered(result domain.QueryResult) View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	status := StatusDone
	if result.Error != "" {
		status = StatusAnsweredError
	}
	return View{Phase: v.Phase, Status: status, Result: result}
}

func (v View) RelayFailed(err error) View {
	if v.Phase == PhaseUnsupported {
		return v
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return View{Phase: v.Phase, Status: StatusConnectionError, Result: domain.QueryResult{Error: msg}}
}

// Settled reports whether nothing is listening or in flight.
func (v View) Settled() bool {
	return v.Phase != PhaseListening && !v.Pending
}
