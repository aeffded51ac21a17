package account

// BaseModel holds the columns every record has.
type BaseModel struct {
	ID        string `json:"id"`
	CreatedTS int64  `json:"created_ts"`
}

// OrgAccount is a member of an organization.
type OrgAccount struct {
	BaseModel
	Name             string           `json:"name,omitempty"`
	FirstName        string           `json:"first_name,omitempty"`
	LastName         string           `json:"last_name,omitempty"`
	OrganizationID   string           `json:"organization_id,omitempty"`
	OrganizationName string           `json:"organization_name,omitempty"`
	UnionLocalName   string           `json:"union_local_name,omitempty"`
	UnionLocalNumber string           `json:"union_local_number,omitempty"`
	OrgMember        *JoinedOrgMember `json:"org_member,omitempty"`
	Password         string           `json:"-"`
}

// JoinedOrgMember is the membership record joined to an account.
type JoinedOrgMember struct {
	ID            string `json:"id"`
	UnionID       string `json:"union_id"`
	LocalMemberID string `json:"local_member_id"`
	Email         string `json:"email"`
}
