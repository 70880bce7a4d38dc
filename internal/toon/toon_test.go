package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/pymove/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "pkg/main.py", "pkg/main.py"},
		{"dotted name", "pkg.sub.mod", "pkg.sub.mod"},
		{"line span", "4-9", "4-9"},
		{"signature no special", "run(self) -> None", "run(self) -> None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	records := []model.MetadataRecord{
		{
			Name:       "fetch",
			Kind:       model.Function,
			File:       "pkg/net.py",
			Module:     "net",
			StartLine:  4,
			EndLine:    9,
			Signature:  "fetch(url: str, retries: int = 3) -> bytes",
			Decorators: []string{"cache"},
			Docstring:  "Fetch a URL.\n\nMore detail.",
			Parameters: []model.Parameter{
				{Name: "url", Type: "str"},
				{Name: "retries", Type: "int", Default: "3"},
			},
			Dependencies: &model.Dependencies{
				Local:  []string{"helper"},
				Stdlib: []string{"urllib"},
			},
		},
		{
			Name:       "Point",
			Kind:       model.Class,
			File:       "pkg/net.py",
			Module:     "net",
			StartLine:  12,
			EndLine:    15,
			Signature:  "Point(Base)",
			Attributes: map[string]string{"y": "0", "x": "1"},
		},
	}

	got := Encode(records)
	want := strings.Join([]string{
		"declarations[2]{file,module,name,kind,lines,signature,decorators,doc}:",
		`  pkg/net.py,net,fetch,function,4-9,"fetch(url: str, retries: int = 3) -> bytes",cache,Fetch a URL.`,
		`  pkg/net.py,net,Point,class,12-15,Point(Base),"",""`,
		"parameters[2]{declaration,name,type,default}:",
		`  fetch,url,str,""`,
		"  fetch,retries,int,3",
		"attributes[2]{class,name,value}:",
		"  Point,x,1",
		"  Point,y,0",
		"dependencies[2]{declaration,tier,name}:",
		"  fetch,local,helper",
		"  fetch,stdlib,urllib",
	}, "\n")
	if got != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(nil)
	if !strings.Contains(got, "declarations[0]{file,module,name,kind,lines,signature,decorators,doc}:") {
		t.Errorf("expected empty declarations section, got:\n%s", got)
	}
	if strings.Contains(got, "attributes[") {
		t.Errorf("attributes section should be omitted when empty, got:\n%s", got)
	}
	if !strings.Contains(got, "dependencies[0]{declaration,tier,name}:") {
		t.Errorf("expected empty dependencies section, got:\n%s", got)
	}
}

func TestEncodeReconciliation(t *testing.T) {
	t.Parallel()

	got := EncodeReconciliation([]string{"fetch"}, []string{"Legacy", "old"})
	want := strings.Join([]string{
		"reconcile[3]{status,name}:",
		"  unscanned,fetch",
		"  undescribed,Legacy",
		"  undescribed,old",
	}, "\n")
	if got != want {
		t.Errorf("EncodeReconciliation =\n%s\nwant\n%s", got, want)
	}
}
