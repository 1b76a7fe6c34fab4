package models

// VisaRuleKind is the closed classification of a visa provider response.
// Raw provider strings ("visa-free", "Visa required", ...) are mapped to
// this enum at the adapter boundary; nothing downstream pattern-matches on
// provider text.
type VisaRuleKind int

const (
	VisaRuleUnknown VisaRuleKind = iota
	VisaRuleFree
	VisaRuleRequired
	VisaRuleOnArrival
	VisaRuleEVisa
)

func (k VisaRuleKind) String() string {
	switch k {
	case VisaRuleFree:
		return "visa-free"
	case VisaRuleRequired:
		return "visa-required"
	case VisaRuleOnArrival:
		return "visa-on-arrival"
	case VisaRuleEVisa:
		return "e-visa"
	default:
		return "unknown"
	}
}

// VisaRoute is a single entry route offered by the destination (e.g. an
// on-arrival visa, or an eVisa alternative).
type VisaRoute struct {
	Kind     VisaRuleKind
	Name     string
	Duration string
	Link     string
}

// VisaRule is the classified visa requirement for one passport/destination
// pair.
type VisaRule struct {
	PassportCode     string
	DestinationCode  string
	Primary          VisaRoute
	Secondary        *VisaRoute
	PassportValidity string
	EmbassyURL       string
	// Registration is set when the destination mandates a pre-arrival
	// registration independent of the visa route (e.g. an e-Arrival card).
	Registration *MandatoryRegistration
}

// MandatoryRegistration is a required pre-arrival registration.
type MandatoryRegistration struct {
	Name string
	Link string
}
