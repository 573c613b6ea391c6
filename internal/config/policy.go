package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog-sync/internal/catalog"
	"catalog-sync/internal/translation"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy is returned by Validate and LoadPolicy.
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy is the reconciliation policy of a deployment: which languages exist,
// how pending texts are tagged, and which catalog positions keep their source
// value in every language.
type Policy struct {
	SourceLanguage string                 `yaml:"source_language"`
	Languages      []translation.Language `yaml:"languages"`
	Ticket         string                 `yaml:"ticket"`
	Denylist       []string               `yaml:"denylist"`
	Overrides      []string               `yaml:"overrides"`
	PendingHeader  []string               `yaml:"pending_header"`
}

// DefaultPolicy returns the reference deployment policy.
func DefaultPolicy() *Policy {
	return &Policy{
		SourceLanguage: "es",
		Languages: []translation.Language{
			{Code: "es", Tag: "es_ES"},
			{Code: "ca", Tag: "ca_ES"},
			{Code: "de", Tag: "de_DE"},
			{Code: "en", Tag: "en_UK"},
			{Code: "eu", Tag: "eu_ES"},
			{Code: "fr", Tag: "fr_FR"},
			{Code: "gl", Tag: "gl_ES"},
			{Code: "pt", Tag: "pt_PT"},
			{Code: "va", Tag: "va_ES"},
		},
		Ticket: "P00027789",
		Denylist: []string{
			"Fee Notice: ATM acquirer will assess a fee to cardholders for international ATM Cash Disbursements. This fee is added to the amount of your transaction and is in addition to any fees that may be charged by your financial institution.",
			"I HAVE BEEN OFFERED A CHOICE OF",
			"CURRENCIES FOR THIS WITHDRAWAL",
		},
		Overrides: []string{
			"contacto.cancelacion",
			"reciboPapel.dcc.importeAFEE",
			"reciboPapel.dcc.importeDivisa",
			"reciboPapel.dcc.comisionDCC",
			"reciboPapel.dcc.informacionDCC1",
			"reciboPapel.dcc.informacionDCC2",
			"recibos.correo.descripcion",
		},
		PendingHeader: []string{
			"Funcionalidad \ndonde se encuentra el texto",
			"CODIGO Literal",
			"Texto a traducir en castellano(es_ES)",
			"Texto traducido a catalán(ca_ES)",
			"Texto traducido a alemán(de_DE)",
			"Texto traducido a inglés(en_UK)",
			"Texto traducido a euskera(eu_ES)",
			"Texto traducido a francés(fr_FR)",
			"Texto traducido a gallego(gl_ES)",
			"Texto traducido a portugués(pt_PT)",
			"Texto traducido a valenciano(va_ES)",
		},
	}
}

// LoadPolicy reads the YAML policy at path over the defaults. Keys absent from
// the file keep their default; an empty path returns the defaults.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode policy %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the language table and the source language.
func (p *Policy) Validate() error {
	if len(p.Languages) == 0 {
		return fmt.Errorf("%w: no languages", ErrInvalidPolicy)
	}
	seen := make(map[string]struct{}, len(p.Languages))
	for _, l := range p.Languages {
		if l.Code == "" || l.Tag == "" {
			return fmt.Errorf("%w: language needs code and tag: %+v", ErrInvalidPolicy, l)
		}
		if _, dup := seen[l.Code]; dup {
			return fmt.Errorf("%w: duplicate language %q", ErrInvalidPolicy, l.Code)
		}
		seen[l.Code] = struct{}{}
		if err := checkTag(l.Tag); err != nil {
			return fmt.Errorf("%w: language %s: %v", ErrInvalidPolicy, l.Code, err)
		}
	}
	if _, ok := seen[p.SourceLanguage]; !ok {
		return fmt.Errorf("%w: source language %q not in languages", ErrInvalidPolicy, p.SourceLanguage)
	}
	return nil
}

// checkTag accepts tags written with "_" or "-". Well-formed tags with
// subtags unknown to the registry (such as "va") are accepted.
func checkTag(tag string) error {
	_, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err == nil {
		return nil
	}
	var verr language.ValueError
	if errors.As(err, &verr) {
		log.Debug().Str("tag", tag).Str("subtag", verr.Subtag()).Msg("Unknown subtag in language tag")
		return nil
	}
	return fmt.Errorf("tag %q: %w", tag, err)
}

// TargetCodes returns the language codes other than the source, in table order.
func (p *Policy) TargetCodes() []string {
	var codes []string
	for _, l := range p.Languages {
		if l.Code != p.SourceLanguage {
			codes = append(codes, l.Code)
		}
	}
	return codes
}

// OverridePaths returns the override paths as catalog paths.
func (p *Policy) OverridePaths() []catalog.Path {
	paths := make([]catalog.Path, len(p.Overrides))
	for i, o := range p.Overrides {
		paths[i] = catalog.Path(o)
	}
	return paths
}
