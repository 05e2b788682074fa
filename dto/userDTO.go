package dto

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	StudyGoal   *int   `json:"studyGoal"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

type NotificationsRequest struct {
	Email     *bool `json:"email" binding:"required"`
	Reminders *bool `json:"reminders" binding:"required"`
}
