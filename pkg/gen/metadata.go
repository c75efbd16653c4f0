package gen

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// MetadataDoctype is the document type declaration of metadata.xml.
const MetadataDoctype = `DOCTYPE pkgmetadata SYSTEM "https://www.gentoo.org/dtd/metadata.dtd"`

// Metadata renders metadata.xml documents from database descriptions.
//
// The document carries a maintainer when the description has a maintainer
// field, a longdescription (falling back to the short description) and an
// upstream remote-id when remote_id is set.
type Metadata struct {
	DB db.Database

	// Indent is the number of spaces per level. Zero means tabs.
	Indent int
}

// Metadata implements [MetadataGenerator].
func (m *Metadata) Metadata(p atom.Package) ([]string, error) {
	d, err := m.DB.Description(p)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(MetadataDoctype)
	root := doc.CreateElement("pkgmetadata")

	if email := d.Field(FieldMaintainer); email != "" {
		maint := root.CreateElement("maintainer")
		maint.CreateAttr("type", "person")
		maint.CreateElement("email").SetText(email)
		if name := d.Field(FieldMaintainerName); name != "" {
			maint.CreateElement("name").SetText(name)
		}
	}

	if long := or(d.Field(FieldLongDescription), d.Description); long != "" {
		root.CreateElement("longdescription").SetText(long)
	}

	if flags := strings.Fields(d.Field(FieldIUse)); len(flags) > 0 {
		use := root.CreateElement("use")
		for _, f := range flags {
			name := strings.TrimLeft(f, "+-")
			flag := use.CreateElement("flag")
			flag.CreateAttr("name", name)
			flag.SetText("Enable " + name + " support")
		}
	}

	if id := d.Field(FieldRemoteID); id != "" {
		remote := root.CreateElement("upstream").CreateElement("remote-id")
		remote.CreateAttr("type", or(d.Field(FieldRemoteIDType), "github"))
		remote.SetText(id)
	}

	if m.Indent > 0 {
		doc.Indent(m.Indent)
	} else {
		doc.IndentTabs()
	}
	out, err := doc.WriteToString()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render metadata for %s", p.CatPkg())
	}
	return Lines(out), nil
}
