package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sentinel domain names and their compact forms.
const (
	DomainAny  = "any"
	DomainNone = "none"

	compactAny  = "?"
	compactNone = "0"
)

// ModuleStep is one stage of a module domain pattern. Each alternative is
// an ordered group of domain names; a group is never left empty.
type ModuleStep struct {
	Title        string
	Options      []string // advisory, never enforced
	Alternatives [][]string
}

// NewModuleStep creates a step with the given display title and domain vocabulary.
func NewModuleStep(title string, options []string, alternatives [][]string) *ModuleStep {
	if options == nil {
		options = []string{}
	}
	if alternatives == nil {
		alternatives = [][]string{}
	}
	return &ModuleStep{Title: title, Options: options, Alternatives: alternatives}
}

// String renders groups joined by "," with domains joined by "+".
func (s *ModuleStep) String() string {
	groups := make([]string, 0, len(s.Alternatives))
	for _, group := range s.Alternatives {
		domains := make([]string, len(group))
		for i, domain := range group {
			switch domain {
			case DomainAny:
				domains[i] = compactAny
			case DomainNone:
				domains[i] = compactNone
			default:
				domains[i] = domain
			}
		}
		groups = append(groups, strings.Join(domains, "+"))
	}
	return strings.Join(groups, ",")
}

// Load replaces the alternatives with the ones in serialized.
// Domain names are not checked against Options.
func (s *ModuleStep) Load(serialized string) {
	s.Alternatives = s.Alternatives[:0]
	for _, alternative := range strings.Split(serialized, ",") {
		parts := strings.Split(alternative, "+")
		group := make([]string, len(parts))
		for i, domain := range parts {
			switch domain {
			case compactAny:
				group[i] = DomainAny
			case compactNone:
				group[i] = DomainNone
			default:
				group[i] = domain
			}
		}
		s.Alternatives = append(s.Alternatives, group)
	}
}

// RemoveDomain removes one domain from an alternative group, dropping the
// group when it becomes empty. Out-of-range indices are ignored.
func (s *ModuleStep) RemoveDomain(altIdx, domainIdx int) {
	if altIdx < 0 || altIdx >= len(s.Alternatives) {
		return
	}
	group := s.Alternatives[altIdx]
	if domainIdx < 0 || domainIdx >= len(group) {
		return
	}

	filtered := make([]string, 0, len(group)-1)
	filtered = append(filtered, group[:domainIdx]...)
	filtered = append(filtered, group[domainIdx+1:]...)
	if len(filtered) == 0 {
		s.Alternatives = append(s.Alternatives[:altIdx], s.Alternatives[altIdx+1:]...)
		return
	}
	s.Alternatives[altIdx] = filtered
}

func copyStrings(s []string) []string {
	return append([]string(nil), s...)
}

func (s *ModuleStep) clone() ModuleStep {
	alternatives := make([][]string, len(s.Alternatives))
	for i, group := range s.Alternatives {
		alternatives[i] = copyStrings(group)
	}
	return ModuleStep{
		Title:        s.Title,
		Options:      copyStrings(s.Options),
		Alternatives: alternatives,
	}
}

// ModulePrefixes are the one-letter step prefixes in step order.
var ModulePrefixes = [moduleStepCount]byte{'S', 'L', 'M', 'T', 'F', 'O'}

const moduleStepCount = 6

var (
	condensationOptions = []string{
		"Condensation", "Condensation_DCL", "Condensation_LCL", "Condensation_Starter",
		"Condensation_Dual", "Cglyc", "Heterocyclisation", "PKS_KS", "CAL_domain", "SAT",
	}
	activationOptions   = []string{"AMP-binding", "A-OX", "PKS_AT"}
	modificationOptions = []string{
		"oMT", "cMT", "nMT", "PKS_KR", "PKS_DH", "PKS_DH2", "PKS_DHt", "PKS_ER",
		"Beta_elim_lyase", "LPG_synthase_C", "TauD",
	}
	carrierOptions      = []string{"PCP", "ACP", "ACP_beta", "PP-binding", "PKS_PP"}
	finalisationOptions = []string{"cAT", "TD", "Thioesterase", "Epimerisation"}
	otherOptions        = []string{
		"Trans-AT_docking", "ACPS", "Aminotran_1_2", "Aminotran_3", "Aminotran_4",
		"Aminotran_5", "B", "ECH", "F", "FkbH", "GNAT", "Hal", "NAD_binding_4",
		"NRPS-COM_Cterm", "NRPS-COM_Nterm", "PKS_Docking_Cterm", "PKS_Docking_Nterm",
		"Polyketide_cyc", "Polyketide_cyc2", "PS", "PT", "TIGR01720", "TIGR02353", "X",
	}
)

// ModuleTerm is a compound module domain pattern made of six fixed steps:
// condensation, substrate activation, modification, carrier protein,
// epimerase/finalisation and other. It serializes as
//
//	S=<step>|L=<step>|...
//
// and is used as the value of module query leaves.
type ModuleTerm struct {
	Steps [moduleStepCount]ModuleStep
}

// NewModuleTerm creates a module term and loads serialized into it when it is not empty.
func NewModuleTerm(serialized string) *ModuleTerm {
	m := &ModuleTerm{
		Steps: [moduleStepCount]ModuleStep{
			*NewModuleStep("Condensation", copyStrings(condensationOptions), nil),
			*NewModuleStep("Substrate activation", copyStrings(activationOptions), nil),
			*NewModuleStep("Modification", copyStrings(modificationOptions), nil),
			*NewModuleStep("Carrier protein", copyStrings(carrierOptions), nil),
			*NewModuleStep("Epimerase/Finalisation", copyStrings(finalisationOptions), nil),
			*NewModuleStep("Other", copyStrings(otherOptions), nil),
		},
	}
	if serialized != "" {
		m.Load(serialized)
	}
	return m
}

// Step returns the step for a prefix, or nil for an unknown prefix.
func (m *ModuleTerm) Step(prefix byte) *ModuleStep {
	for i, p := range ModulePrefixes {
		if p == prefix {
			return &m.Steps[i]
		}
	}
	return nil
}

// Load reads "<prefix>=<step>" fragments separated by "|". Fragments with an
// unknown prefix or without "=" after the prefix are skipped. Steps that are
// not mentioned keep their alternatives.
func (m *ModuleTerm) Load(serialized string) {
	for _, fragment := range strings.Split(serialized, "|") {
		if len(fragment) < 2 || fragment[1] != '=' {
			continue
		}
		step := m.Step(fragment[0])
		if step == nil {
			continue
		}
		step.Load(fragment[2:])
	}
}

// String renders the steps that have alternatives, in prefix order.
func (m *ModuleTerm) String() string {
	var parts []string
	for i := range m.Steps {
		if len(m.Steps[i].Alternatives) == 0 {
			continue
		}
		parts = append(parts, string(ModulePrefixes[i])+"="+m.Steps[i].String())
	}
	return strings.Join(parts, "|")
}

// IsZero reports whether no step has alternatives.
func (m *ModuleTerm) IsZero() bool {
	if m == nil {
		return true
	}
	for i := range m.Steps {
		if len(m.Steps[i].Alternatives) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *ModuleTerm) Clone() *ModuleTerm {
	c := &ModuleTerm{}
	for i := range m.Steps {
		c.Steps[i] = m.Steps[i].clone()
	}
	return c
}

// MarshalJSON writes the compact string form.
func (m *ModuleTerm) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON reads the compact string form.
func (m *ModuleTerm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("module term must be a string: %w", err)
	}
	*m = *NewModuleTerm(s)
	return nil
}
