package mdrender_test

import (
	"fmt"

	"github.com/alnah/go-mdrender"
)

// Example renders Markdown with the default policy.
func Example() {
	fmt.Print(mdrender.Render("**hi** $x=1$"))
	// Output: <p><strong>hi</strong> $x=1$</p>
}

// Example_math shows that LaTeX delimiters survive Markdown escaping.
func Example_math() {
	fmt.Print(mdrender.Render(`\(a=b\)`))
	// Output: <p>\(a=b\)</p>
}

// Example_sanitize shows that script elements are dropped with their content.
func Example_sanitize() {
	fmt.Print(mdrender.Render("<script>alert(1)</script>hello"))
	// Output: hello
}

// Example_linkify shows bare URLs becoming links that open in a new tab.
func Example_linkify() {
	fmt.Print(mdrender.Render("visit http://example.com now"))
	// Output: <p>visit <a href="http://example.com" rel="nofollow noopener" target="_blank">http://example.com</a> now</p>
}

// ExampleNewRenderer builds a renderer with a narrower policy.
func ExampleNewRenderer() {
	p := mdrender.DefaultPolicy()
	p.Tags = []string{"p", "em"}
	p.Attributes = nil

	r, err := mdrender.NewRenderer(p)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(r.Render("*kept* **unwrapped**"))
	// Output: <p><em>kept</em> unwrapped</p>
}

// ExamplePolicy_Validate shows an unsafe allow-list being rejected.
func ExamplePolicy_Validate() {
	p := mdrender.DefaultPolicy()
	p.Attributes["img"] = append(p.Attributes["img"], "onerror")

	fmt.Println(p.Validate())
	// Output: unsafe attribute in allow-list: "onerror" on "img"
}
