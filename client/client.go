package client

// Client is the typed API client the supervisor device drives.
type Client struct {
	Transport  *Transport
	Attendance *AttendanceEndpoint
	Auth       *AuthEndpoint
}

// NewClient initializes the API client. token may be empty for the login
// endpoints; SetToken installs the session token once authenticated.
func NewClient(baseURL string, token string) *Client {
	t := NewTransport(baseURL, token)
	return &Client{
		Transport:  t,
		Attendance: &AttendanceEndpoint{transport: t},
		Auth:       &AuthEndpoint{transport: t},
	}
}

func (c *Client) SetToken(token string) {
	c.Transport.AuthToken = token
}
