package models

// Product is a catalog entry.
type Product struct {
	ProductID   int64   `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	AgeRange    string  `json:"ageRange"`
	ImageURL    string  `json:"imageUrl"`
}

// Statistics is the admin dashboard summary from GET /admin/statistics.
type Statistics struct {
	TotalUsers              int64 `json:"totalUsers"`
	ActiveUsers             int64 `json:"activeUsers"`
	LockedAccounts          int64 `json:"lockedAccounts"`
	NewUsersLastWeek        int64 `json:"newUsersLastWeek"`
	NewUsersLastMonth       int64 `json:"newUsersLastMonth"`
	UsersWithFailedAttempts int64 `json:"usersWithFailedAttempts"`
}
