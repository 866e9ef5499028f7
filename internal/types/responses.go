package types

import "time"

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type BoardSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint      `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	Shared    bool      `json:"shared"`
}

type CardResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	ListID      uint      `json:"list_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListResponse struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Cards []CardResponse `json:"cards"`
}

type BoardResponse struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	OwnerID       uint           `json:"owner_id"`
	CreatedAt     time.Time      `json:"created_at"`
	Lists         []ListResponse `json:"lists"`
	Collaborators []UserResponse `json:"collaborators"`
}

type DashboardResponse struct {
	Boards     []BoardSummary `json:"boards"`
	Motivation string         `json:"motivation"`
	Notice     string         `json:"notice,omitempty"`
}
