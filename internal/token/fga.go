package token

import (
	"context"
	"fmt"
	"strings"

	fga "github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"

	"github.com/TwigBush/roleguard/internal/authz"
)

type FGAConfig struct {
	APIURL   string
	StoreID  string
	APIToken string // optional
	ModelID  string // optional but recommended in prod
	UserType string // e.g. "user"
	RoleType string // e.g. "role"
	Relation string // e.g. "assignee"
}

// FGA takes the subject from the token and the roles from OpenFGA: every object
// of RoleType the subject holds Relation on is a role, e.g. role:admin#assignee.
type FGA struct {
	subjects Grants
	userType string
	roleType string
	relation string
	list     func(ctx context.Context, user string) ([]string, error)
}

func NewFGA(cfg FGAConfig, subjects Grants) (*FGA, error) {
	conf := &fga.ClientConfiguration{
		ApiUrl:  cfg.APIURL,
		StoreId: cfg.StoreID,
	}

	// Pin a specific auth model if provided
	if cfg.ModelID != "" {
		conf.AuthorizationModelId = cfg.ModelID
	}
	if cfg.APIToken != "" {
		conf.Credentials = &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{ApiToken: cfg.APIToken},
		}
	}

	client, err := fga.NewSdkClient(conf)
	if err != nil {
		return nil, fmt.Errorf("openfga_client_init: %w", err)
	}

	f := newFGA(cfg, subjects)
	f.list = func(ctx context.Context, user string) ([]string, error) {
		resp, err := client.ListObjects(ctx).Body(fga.ClientListObjectsRequest{
			User:     user,       // e.g. "user:alice"
			Relation: f.relation, // e.g. "assignee"
			Type:     f.roleType, // e.g. "role"
		}).Execute()
		if err != nil {
			return nil, err
		}
		return resp.GetObjects(), nil
	}
	return f, nil
}

func newFGA(cfg FGAConfig, subjects Grants) *FGA {
	f := &FGA{
		subjects: subjects,
		userType: cfg.UserType,
		roleType: cfg.RoleType,
		relation: cfg.Relation,
	}
	if f.userType == "" {
		f.userType = "user"
	}
	if f.roleType == "" {
		f.roleType = "role"
	}
	if f.relation == "" {
		f.relation = "assignee"
	}
	return f
}

func (f *FGA) Grant(ctx context.Context, raw string) (*Grant, error) {
	base, err := f.subjects.Grant(ctx, raw)
	if err != nil {
		return nil, err
	}
	if base == nil || base.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", authz.ErrTokenRejected)
	}

	objects, err := f.list(ctx, f.userType+":"+base.Subject)
	if err != nil {
		return nil, fmt.Errorf("fga_list_objects: %w", err)
	}
	prefix := f.roleType + ":"
	roles := make([]string, 0, len(objects))
	for _, obj := range objects {
		if r, ok := strings.CutPrefix(obj, prefix); ok && r != "" {
			roles = append(roles, r)
		}
	}
	return &Grant{Subject: base.Subject, Realm: roles, ExpiresAt: base.ExpiresAt}, nil
}
