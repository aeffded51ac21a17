package api

import (
	"net/http"

	"example.com/union/account"
)

type Accounts struct{}

// Get retrieves one organization account.
//
// @Router /account/{id} [get]
// @Tags accounts
// @Security ApiKeyAuth
// @return account.OrgAccount
func (c *Accounts) Get(r *http.Request, id string) account.OrgAccount {
	return account.OrgAccount{}
}

// List lists organization members for a local admin.
//
// @Router /account/organization/member [get]
// @Tags accounts
// @Security ApiKeyAuth
// @return account.OrgAccount[]
func List(w http.ResponseWriter, r *http.Request, q string, limit int) {}

// Health reports liveness.
//
// @Router /health [get]
// @Version internal
// @return string
func Health(w http.ResponseWriter, r *http.Request) {}
