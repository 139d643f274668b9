package github

// Client provides high-level GitHub operations for one owner.
//
// Example usage:
//
//	provider, err := sdk.NewSDKProvider(sdk.WithToken("ghp_..."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := github.NewClient(provider, "octo")
//	sha, err := client.Repository("demo").ResolveRef(ctx, "main")
type Client struct {
	provider Provider
	owner    string
}

// NewClient creates a new GitHub client with the specified provider.
// The owner is an organization name or username.
func NewClient(provider Provider, owner string) *Client {
	return &Client{
		provider: provider,
		owner:    owner,
	}
}

// Repository returns a Repository for the given name (without owner).
// It does not check that the repository exists.
func (c *Client) Repository(name string) *Repository {
	return &Repository{
		client: c,
		owner:  c.owner,
		name:   name,
	}
}

// Provider returns the underlying Provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Owner returns the default owner for this client.
func (c *Client) Owner() string {
	return c.owner
}
