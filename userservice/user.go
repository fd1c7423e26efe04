package userservice

// User is the profile returned by the user-service. The upstream record also carries
// a password hash, which is never decoded.
type User struct {
	UserID    int64   `json:"userId"`
	FullName  string  `json:"fullName"`
	Username  string  `json:"username"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}
