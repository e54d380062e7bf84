package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Classes whose content only exists for screen readers. LinkedIn renders most
// labels twice: once aria-hidden for display and once visually hidden.
var hiddenClasses = []string{"visually-hidden", "a11y-text"}

// VisibleText concatenates the text a user would see under node
func VisibleText(node *html.Node) string {
	var b strings.Builder
	visibleText(node, &b)
	return collapse(b.String())
}

func visibleText(node *html.Node, b *strings.Builder) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
		b.WriteByte(' ')
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			b.WriteByte(' ')
		}
		if isHidden(node) {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		visibleText(child, b)
	}
}

func isHidden(node *html.Node) bool {
	for _, a := range node.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "class":
			for _, c := range strings.Fields(a.Val) {
				for _, h := range hiddenClasses {
					if c == h {
						return true
					}
				}
			}
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
