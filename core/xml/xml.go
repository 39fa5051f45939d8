// Package xml provides the read-only XML document model used by the OSIS
// parsers: parsing, well-formedness validation, cached XPath queries, and
// sibling/ancestor navigation over github.com/antchfx/xmlquery nodes.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities by default, and we explicitly
//     disable entity expansion in validation functions.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
//
// A Document must not be mutated after Parse returns. All methods are safe
// for concurrent use by multiple readers.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/golang/groupcache/lru"
)

// MaxCachedExpressions bounds the compiled XPath expressions kept per
// document. Queries embed caller-supplied ids, so the set of distinct
// expressions is open-ended.
const MaxCachedExpressions = 512

// Kind classifies a node.
type Kind int

const (
	// KindOther covers declarations, comments, and processing instructions.
	KindOther Kind = iota
	// KindElement is an element node.
	KindElement
	// KindText is a text or CDATA node.
	KindText
)

// Document represents a parsed XML document.
type Document struct {
	root  *xmlquery.Node
	size  int64
	exprs exprCache
}

// exprCache is a mutex-guarded LRU of compiled expressions. The zero value
// is ready to use.
type exprCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

func (c *exprCache) get(expr string) (*xpath.Expr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru == nil {
		return nil, false
	}
	v, ok := c.lru.Get(expr)
	if !ok {
		return nil, false
	}
	return v.(*xpath.Expr), true
}

func (c *exprCache) add(expr string, compiled *xpath.Expr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru == nil {
		c.lru = lru.New(MaxCachedExpressions)
	}
	c.lru.Add(expr, compiled)
}

func (c *exprCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Node represents an XML node (element, text, comment, ...).
type Node struct {
	node *xmlquery.Node
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	doc, err := ParseReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	doc.size = int64(len(data))
	return doc, nil
}

// ParseReader parses XML from r and returns a Document.
func ParseReader(r io.Reader) (*Document, error) {
	cr := &countingReader{r: r}
	root, err := xmlquery.Parse(cr)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root, size: cr.n}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Validate validates XML data and returns a ValidationResult.
// If schema is nil, only well-formedness is checked.
//
// Security: This function is protected against XXE (XML External Entity) attacks
// by disabling entity expansion. Go's xml.Decoder does not fetch external entities
// by default, and we explicitly disable internal entity expansion as well.
func Validate(data []byte, schema []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))

	// XXE Protection (CWE-611): Disable entity expansion to prevent XXE attacks.
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := decoder.InputPos()
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Column:  0,
				Message: err.Error(),
			})
			break
		}
	}

	return result
}

// Size returns the number of bytes the document was parsed from.
func (d *Document) Size() int64 {
	return d.size
}

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d.root == nil {
		return 0, nil
	}
	n, err := io.WriteString(w, d.root.OutputXML(false))
	return int64(n), err
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// compile returns the compiled form of expr, caching the most recently used
// expressions on the document.
func (d *Document) compile(expr string) (*xpath.Expr, error) {
	if cached, ok := d.exprs.get(expr); ok {
		return cached, nil
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	d.exprs.add(expr, compiled)
	return compiled, nil
}

// XPath executes an XPath query and returns matching nodes in document order.
func (d *Document) XPath(expr string) ([]*Node, error) {
	compiled, err := d.compile(expr)
	if err != nil {
		return nil, err
	}
	return wrapAll(xmlquery.QuerySelectorAll(d.root, compiled)), nil
}

// XPathFirst executes an XPath query and returns the first matching node,
// or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	compiled, err := d.compile(expr)
	if err != nil {
		return nil, err
	}
	return wrap(xmlquery.QuerySelector(d.root, compiled)), nil
}

// Select evaluates expr relative to n. The expression is compiled through the
// document cache so repeated relative queries stay cheap.
func (d *Document) Select(n *Node, expr string) ([]*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	compiled, err := d.compile(expr)
	if err != nil {
		return nil, err
	}
	return wrapAll(xmlquery.QuerySelectorAll(n.node, compiled)), nil
}

// Literal quotes s as an XPath 1.0 string literal. Strings containing both
// quote characters are expressed with concat().
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	var sb strings.Builder
	sb.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(`, "'", `)
		}
		sb.WriteString("'" + p + "'")
	}
	sb.WriteString(")")
	return sb.String()
}

func wrap(n *xmlquery.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{node: n}
}

func wrapAll(nodes []*xmlquery.Node) []*Node {
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result
}

// Is reports whether n and other wrap the same underlying node.
func (n *Node) Is(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.node == other.node
}

// Kind returns the node kind.
func (n *Node) Kind() Kind {
	if n == nil || n.node == nil {
		return KindOther
	}
	switch n.node.Type {
	case xmlquery.ElementNode:
		return KindElement
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return KindText
	default:
		return KindOther
	}
}

// IsElement reports whether n is an element named name (any name when name
// is empty).
func (n *Node) IsElement(name string) bool {
	if n.Kind() != KindElement {
		return false
	}
	return name == "" || n.node.Data == name
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Data returns the raw character data of a text node.
func (n *Node) Data() string {
	if n.Kind() != KindText {
		return ""
	}
	return n.node.Data
}

// Text returns the text content of the node.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// InnerText returns all text content of the node and its descendants.
func (n *Node) InnerText() string {
	return n.Text()
}

// InnerXML returns the inner XML of the node.
func (n *Node) InnerXML() string {
	if n == nil || n.node == nil {
		return ""
	}
	var buf bytes.Buffer
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		buf.WriteString(child.OutputXML(true))
	}
	return buf.String()
}

// Parent returns the parent node, or nil at the document node.
func (n *Node) Parent() *Node {
	if n == nil || n.node == nil || n.node.Parent == nil {
		return nil
	}
	if n.node.Parent.Type == xmlquery.DocumentNode {
		return nil
	}
	return &Node{node: n.node.Parent}
}

// FirstChild returns the first child node of any kind.
func (n *Node) FirstChild() *Node {
	if n == nil || n.node == nil {
		return nil
	}
	return wrap(n.node.FirstChild)
}

// LastChild returns the last child node of any kind.
func (n *Node) LastChild() *Node {
	if n == nil || n.node == nil {
		return nil
	}
	return wrap(n.node.LastChild)
}

// NextSibling returns the following sibling of any kind.
func (n *Node) NextSibling() *Node {
	if n == nil || n.node == nil {
		return nil
	}
	return wrap(n.node.NextSibling)
}

// PrevSibling returns the preceding sibling of any kind.
func (n *Node) PrevSibling() *Node {
	if n == nil || n.node == nil {
		return nil
	}
	return wrap(n.node.PrevSibling)
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Nodes returns all child nodes, including text nodes.
func (n *Node) Nodes() []*Node {
	if n == nil || n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, &Node{node: child})
	}
	return children
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	if n == nil || other == nil || n.node == nil {
		return false
	}
	for p := other.node; p != nil; p = p.Parent {
		if p == n.node {
			return true
		}
	}
	return false
}

// Attributes returns all unprefixed attributes of the node.
func (n *Node) Attributes() map[string]string {
	if n == nil || n.node == nil {
		return nil
	}

	attrs := make(map[string]string)
	for _, attr := range n.node.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// LocalAttr returns the value of the first attribute with the given local
// name in any namespace, such as xml:lang for "lang".
func (n *Node) LocalAttr(local string) string {
	if n == nil || n.node == nil {
		return ""
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// HasAttr reports whether the unprefixed attribute name is present, even
// with an empty value.
func (n *Node) HasAttr(name string) bool {
	if n == nil || n.node == nil {
		return false
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == name && attr.Name.Space == "" {
			return true
		}
	}
	return false
}
