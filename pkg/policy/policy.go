package policy

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"
)

type (
	Operation string
	Family    string
)

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"

	FamilyOrganization Family = "organization"
	FamilyCharity      Family = "charity"
	FamilyVolunteer    Family = "volunteer"
	FamilyDonation     Family = "donation"
	FamilyPickup       Family = "pickup"
	FamilyImpactMetric Family = "impact_metric"
	// FamilyMatching covers running the matcher. Only admins hold it.
	FamilyMatching Family = "matching"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && keyMatch(r.act, p.act)
`

// rolePolicies is the coarse role gate. Ownership is checked afterwards.
var rolePolicies = [][]string{
	{domain.RoleAdmin, "*", "*"},

	{domain.RoleDonor, string(FamilyOrganization), string(OpWrite)},
	{domain.RoleCharity, string(FamilyCharity), string(OpWrite)},
	{domain.RoleVolunteer, string(FamilyVolunteer), string(OpWrite)},
	{domain.RoleDonor, string(FamilyDonation), string(OpWrite)},
	{domain.RoleVolunteer, string(FamilyPickup), string(OpWrite)},
	{domain.RoleCharity, string(FamilyPickup), string(OpWrite)},

	{domain.RoleVolunteer, string(FamilyPickup), string(OpRead)},
	{domain.RoleCharity, string(FamilyPickup), string(OpRead)},
	{domain.RoleDonor, string(FamilyPickup), string(OpRead)},
}

// publicFamilies may be read by any authenticated principal.
var publicFamilies = map[Family]bool{
	FamilyOrganization: true,
	FamilyCharity:      true,
	FamilyVolunteer:    true,
	FamilyDonation:     true,
	FamilyImpactMetric: true,
}

type (
	// Resource carries the user ids that own or participate in one entity.
	Resource struct {
		Family          Family
		OwnerUserID     uuid.UUID
		VolunteerUserID uuid.UUID
		CharityUserID   uuid.UUID
		DonorUserID     uuid.UUID
	}

	Enforcer interface {
		CanAccess(principal domain.Principal, op Operation, resource Resource) bool
		// Authorize is CanAccess returning domain.ErrForbidden on denial.
		Authorize(principal domain.Principal, op Operation, resource Resource) error
	}

	enforcer struct {
		rbac *casbin.Enforcer
	}
)

func NewEnforcer() (Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}
	rbac, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create policy enforcer: %w", err)
	}
	if _, err := rbac.AddPolicies(rolePolicies); err != nil {
		return nil, fmt.Errorf("add role policies: %w", err)
	}
	return &enforcer{rbac: rbac}, nil
}

func (e *enforcer) CanAccess(principal domain.Principal, op Operation, resource Resource) bool {
	if principal.UserID == "" || !domain.IsValidRole(principal.Role) {
		return false
	}
	if op == OpRead && publicFamilies[resource.Family] {
		return true
	}

	allowed, err := e.rbac.Enforce(principal.Role, string(resource.Family), string(op))
	if err != nil || !allowed {
		return false
	}
	if principal.IsAdmin() {
		return true
	}

	userID, err := uuid.Parse(principal.UserID)
	if err != nil {
		return false
	}
	return owns(userID, principal.Role, op, resource)
}

func (e *enforcer) Authorize(principal domain.Principal, op Operation, resource Resource) error {
	if e.CanAccess(principal, op, resource) {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s %s", domain.ErrForbidden, principal.Role, op, resource.Family)
}

func owns(userID uuid.UUID, role string, op Operation, resource Resource) bool {
	switch resource.Family {
	case FamilyOrganization, FamilyCharity, FamilyVolunteer, FamilyDonation:
		return op == OpWrite && matches(userID, resource.OwnerUserID)
	case FamilyPickup:
		switch {
		case role == domain.RoleVolunteer:
			return matches(userID, resource.VolunteerUserID)
		case role == domain.RoleCharity:
			return matches(userID, resource.CharityUserID)
		case role == domain.RoleDonor && op == OpRead:
			return matches(userID, resource.DonorUserID)
		}
	}
	return false
}

func matches(userID, owner uuid.UUID) bool {
	return owner != uuid.Nil && userID == owner
}

func OrganizationResource(org *entities.Organization) Resource {
	return Resource{Family: FamilyOrganization, OwnerUserID: org.UserID}
}

func CharityResource(charity *entities.Charity) Resource {
	return Resource{Family: FamilyCharity, OwnerUserID: charity.UserID}
}

func VolunteerResource(volunteer *entities.Volunteer) Resource {
	return Resource{Family: FamilyVolunteer, OwnerUserID: volunteer.UserID}
}

// DonationResource needs the owning organization to resolve its user.
func DonationResource(org *entities.Organization) Resource {
	return Resource{Family: FamilyDonation, OwnerUserID: org.UserID}
}

// PickupResource expects Volunteer, Charity and Donation.Organization preloaded.
func PickupResource(pickup *entities.Pickup) Resource {
	res := Resource{Family: FamilyPickup}
	if pickup.Volunteer != nil {
		res.VolunteerUserID = pickup.Volunteer.UserID
	}
	if pickup.Charity != nil {
		res.CharityUserID = pickup.Charity.UserID
	}
	if pickup.Donation != nil && pickup.Donation.Organization != nil {
		res.DonorUserID = pickup.Donation.Organization.UserID
	}
	return res
}

func ImpactMetricResource() Resource {
	return Resource{Family: FamilyImpactMetric}
}

func MatchingResource() Resource {
	return Resource{Family: FamilyMatching}
}
