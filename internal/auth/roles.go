// Package auth resolves bearer tokens into principals and decides which
// principal kinds may perform which actions.
package auth

// Kind identifies which of the three principal variants is populated.
type Kind string

const (
	KindPolice     Kind = "police"
	KindGovernment Kind = "government"
	KindCitizen    Kind = "citizen"
)

// VerificationOrder is the fixed order in which verifiers are tried when an
// endpoint accepts more than one kind.
var VerificationOrder = []Kind{KindPolice, KindGovernment, KindCitizen}

// Permission represents a specific action on a resource.
type Permission string

// FIR permissions
const (
	PermFIRRegister     Permission = "fir.register"
	PermFIRProgressAdd  Permission = "fir.progress.add"
	PermFIRProgressRead Permission = "fir.progress.read"
	PermFIRClose        Permission = "fir.close"
	PermFIRRead         Permission = "fir.read"
	PermFIRReadOwned    Permission = "fir.read_owned"
	PermFIRList         Permission = "fir.list"
	PermFIRListStation  Permission = "fir.list.station"
	PermFIRListOwn      Permission = "fir.list.own"
	PermFIRRegionSearch Permission = "fir.search.region"
)

// Escalation permissions
const (
	PermEscalationSubmit   Permission = "escalation.submit"
	PermEscalationModerate Permission = "escalation.moderate"
)

const PermRosterRead Permission = "roster.read"

// KindPermissions maps each principal kind to what it may do before any
// ownership check. The *Owned permissions and progress reads additionally
// require a citizen to be the FIR's complainant; handlers enforce that.
var KindPermissions = map[Kind][]Permission{
	KindPolice: {
		PermFIRRegister, PermFIRProgressAdd, PermFIRProgressRead, PermFIRClose,
		PermFIRRead, PermFIRReadOwned, PermFIRList, PermFIRListStation,
		PermRosterRead,
	},
	KindGovernment: {
		PermFIRRead, PermFIRList, PermFIRRegionSearch,
		PermEscalationModerate,
	},
	KindCitizen: {
		PermFIRProgressRead, PermFIRReadOwned, PermFIRListOwn,
		PermEscalationSubmit,
	},
}

// HasPermission checks if a kind has a specific permission.
func HasPermission(kind Kind, perm Permission) bool {
	for _, p := range KindPermissions[kind] {
		if p == perm {
			return true
		}
	}
	return false
}

// KindsWith returns the kinds holding perm, in VerificationOrder.
func KindsWith(perm Permission) []Kind {
	var kinds []Kind
	for _, k := range VerificationOrder {
		if HasPermission(k, perm) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
