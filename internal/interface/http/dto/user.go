package dto

// MeResponse 当前登录读者
type MeResponse struct {
	UserID uint   `json:"user_id" example:"1"`
	Role   string `json:"role" example:"reader"`
}
