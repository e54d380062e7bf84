package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
)

// By selects the query language of a Locator
type By int

const (
	ByCSS By = iota
	ByXPath
)

func (b By) String() string {
	if b == ByXPath {
		return "xpath"
	}
	return "css"
}

// Locator is a compiled element query. The raw Query is kept so the same
// locator can be handed to the live browser.
type Locator struct {
	By    By
	Query string

	css   cascadia.Selector
	xpath *xpath.Expr
}

// CSS compiles a CSS selector locator. It panics on an invalid selector, so
// locators are meant to be package-level values.
func CSS(query string) Locator {
	l, err := Compile(ByCSS, query)
	if err != nil {
		panic(err)
	}
	return l
}

// XPath compiles a structural-path locator. It panics on an invalid expression.
func XPath(query string) Locator {
	l, err := Compile(ByXPath, query)
	if err != nil {
		panic(err)
	}
	return l
}

// Compile builds a Locator and reports invalid queries as errors
func Compile(by By, query string) (Locator, error) {
	l := Locator{By: by, Query: query}
	switch by {
	case ByCSS:
		sel, err := cascadia.Compile(query)
		if err != nil {
			return Locator{}, fmt.Errorf("invalid css selector %q: %w", query, err)
		}
		l.css = sel
	case ByXPath:
		expr, err := xpath.Compile(query)
		if err != nil {
			return Locator{}, fmt.Errorf("invalid xpath %q: %w", query, err)
		}
		l.xpath = expr
	default:
		return Locator{}, fmt.Errorf("unknown locator kind %d", by)
	}
	return l, nil
}

func (l Locator) String() string {
	return l.By.String() + ":" + l.Query
}
