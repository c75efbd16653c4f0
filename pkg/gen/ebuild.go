package gen

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// Description fields read by the default generators.
const (
	FieldEAPI            = "eapi"
	FieldHomepage        = "homepage"
	FieldSrcURI          = "src_uri"
	FieldLicense         = "license"
	FieldSlot            = "slot"
	FieldKeywords        = "keywords"
	FieldIUse            = "iuse"
	FieldLongDescription = "longdescription"
	FieldMaintainer      = "maintainer"
	FieldMaintainerName  = "maintainer_name"
	FieldRemoteID        = "remote_id"
	FieldRemoteIDType    = "remote_id_type"
)

const (
	defaultEAPI     = "8"
	defaultSlot     = "0"
	defaultKeywords = "~amd64 ~x86"
)

var ebuildTemplate = template.Must(template.New("ebuild").Parse(`# Automatically generated by overlaysmith. Do not edit.

EAPI={{.EAPI}}
{{- if .Inherit}}

inherit {{.Inherit}}
{{- end}}

DESCRIPTION="{{.Description}}"
{{- if .Homepage}}
HOMEPAGE="{{.Homepage}}"
{{- end}}
{{- if .SrcURI}}
SRC_URI="{{.SrcURI}}"
{{- end}}

LICENSE="{{.License}}"
SLOT="{{.Slot}}"
KEYWORDS="{{.Keywords}}"
IUSE="{{.IUse}}"
{{- if .Depend}}

DEPEND="{{range .Depend}}
	{{.}}{{end}}
"
RDEPEND="${DEPEND}"
{{- end}}
`))

type ebuildData struct {
	EAPI        string
	Inherit     string
	Description string
	Homepage    string
	SrcURI      string
	License     string
	Slot        string
	Keywords    string
	IUse        string
	Depend      []string
}

// Ebuild renders build descriptors from a text template.
//
// Eclasses of the description become the inherit line, its dependencies
// DEPEND and RDEPEND. The remaining variables come from Fields, with EAPI 8,
// SLOT 0 and testing keywords as defaults.
type Ebuild struct{}

// Descriptor implements [DescriptorGenerator].
func (Ebuild) Descriptor(p atom.Package, d db.Description) ([]string, error) {
	data := ebuildData{
		EAPI:        or(d.Field(FieldEAPI), defaultEAPI),
		Inherit:     strings.Join(d.Eclasses, " "),
		Description: quote(d.Description),
		Homepage:    quoteVar(d.Field(FieldHomepage)),
		SrcURI:      quoteVar(d.Field(FieldSrcURI)),
		License:     quoteVar(d.Field(FieldLicense)),
		Slot:        quoteVar(or(d.Field(FieldSlot), defaultSlot)),
		Keywords:    quoteVar(or(d.Field(FieldKeywords), defaultKeywords)),
		IUse:        quoteVar(d.Field(FieldIUse)),
	}
	for _, dep := range d.Dependencies {
		data.Depend = append(data.Depend, dep.String())
	}

	var buf bytes.Buffer
	if err := ebuildTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render ebuild for %s", p)
	}
	return Lines(buf.String()), nil
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

var (
	quoteReplacer    = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", "$", `\$`)
	quoteVarReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")
)

// quote escapes free text for a double-quoted shell string.
func quote(s string) string {
	return quoteReplacer.Replace(s)
}

// quoteVar is quote for variables such as SRC_URI: "$" passes through so
// they can reference ${PV}.
func quoteVar(s string) string {
	return quoteVarReplacer.Replace(s)
}
