package dto

import "studybuddy/pomodoro"

type TimerSettingsRequest struct {
	FocusDuration     int `json:"focusDuration" binding:"required,min=1,max=60"`
	ShortBreak        int `json:"shortBreak" binding:"required,min=1,max=30"`
	LongBreak         int `json:"longBreak" binding:"required,min=1,max=60"`
	SessionsUntilLong int `json:"sessionsUntilLong" binding:"required,min=1,max=10"`
}

type TimerResponse struct {
	pomodoro.State
	Clock    string  `json:"clock"`
	Progress float64 `json:"progress"`
}

func NewTimerResponse(st pomodoro.State) TimerResponse {
	return TimerResponse{State: st, Clock: st.Clock(), Progress: st.Progress()}
}
