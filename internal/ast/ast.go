package ast

// Node is any syntax tree node.
//
// The node set is closed: every variant lives in this package and carries an
// unexported marker method. Rewriters switch over concrete types and return
// "not applicable" for shapes they do not know.
type Node interface {
	node()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// ClassMember is a member of a class body.
type ClassMember interface {
	Node
	memberNode()
}

// ObjectEntry is an entry of an object literal: *Property or *Spread.
type ObjectEntry interface {
	Node
	entryNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Body []Stmt
}

func (*Program) node() {}

// =============================================================================
// Statements
// =============================================================================

// VarDecl is a `var`, `let` or `const` declaration.
type VarDecl struct {
	Kind  string // "var" | "let" | "const"
	Decls []*VarDeclarator
}

// VarDeclarator binds one target. Target is an *Ident or a destructuring
// *ObjectLit / *ArrayLit. Init is nil when absent.
type VarDeclarator struct {
	Target Expr
	Init   Expr
}

// FuncDecl is a named function declaration.
type FuncDecl struct {
	Name   string
	Params []Expr
	Body   *Block
	Async  bool
}

// ClassDecl is a named class declaration.
type ClassDecl struct {
	Name       string
	SuperClass Expr
	Members    []ClassMember
}

type Block struct {
	Body []Stmt
}

type Return struct {
	Arg Expr
}

type If struct {
	Test Expr
	Cons Stmt
	Alt  Stmt
}

// For is a classic three-clause loop. Init is a *VarDecl, an *ExprStmt or nil.
type For struct {
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

// ForIn covers both `for (x of xs)` and `for (k in obj)`.
type ForIn struct {
	Left  Stmt // *VarDecl without initializer, or *ExprStmt
	Of    bool
	Right Expr
	Body  Stmt
}

type While struct {
	Test Expr
	Body Stmt
}

type Throw struct {
	Arg Expr
}

type Break struct{}

type Continue struct{}

type ExprStmt struct {
	X Expr
}

type Empty struct{}

func (*VarDecl) node()       {}
func (*VarDeclarator) node() {}
func (*FuncDecl) node()      {}
func (*ClassDecl) node()     {}
func (*Block) node()         {}
func (*Return) node()        {}
func (*If) node()            {}
func (*For) node()           {}
func (*ForIn) node()         {}
func (*While) node()         {}
func (*Throw) node()         {}
func (*Break) node()         {}
func (*Continue) node()      {}
func (*ExprStmt) node()      {}
func (*Empty) node()         {}

func (*VarDecl) stmtNode()   {}
func (*FuncDecl) stmtNode()  {}
func (*ClassDecl) stmtNode() {}
func (*Block) stmtNode()     {}
func (*Return) stmtNode()    {}
func (*If) stmtNode()        {}
func (*For) stmtNode()       {}
func (*ForIn) stmtNode()     {}
func (*While) stmtNode()     {}
func (*Throw) stmtNode()     {}
func (*Break) stmtNode()     {}
func (*Continue) stmtNode()  {}
func (*ExprStmt) stmtNode()  {}
func (*Empty) stmtNode()     {}

// =============================================================================
// Class members
// =============================================================================

// MethodKind distinguishes plain methods from accessors and constructors.
type MethodKind string

const (
	MethodPlain       MethodKind = "method"
	MethodGet         MethodKind = "get"
	MethodSet         MethodKind = "set"
	MethodConstructor MethodKind = "constructor"
)

// ClassMethod is a method definition inside a class body.
type ClassMethod struct {
	Kind     MethodKind
	Static   bool
	Key      Expr
	Computed bool
	Params   []Expr
	Body     *Block
}

// ClassProperty is a field declaration (`name = value;`). Value may be nil.
type ClassProperty struct {
	Static   bool
	Key      Expr
	Computed bool
	Value    Expr
}

func (*ClassMethod) node()         {}
func (*ClassProperty) node()       {}
func (*ClassMethod) memberNode()   {}
func (*ClassProperty) memberNode() {}

// =============================================================================
// Expressions
// =============================================================================

type Ident struct {
	Name string
}

// NumberLit keeps the source spelling so printing round-trips.
type NumberLit struct {
	Raw string
}

// StringLit holds the decoded string value.
type StringLit struct {
	Value string
}

// TemplateLit is a backtick literal kept verbatim, delimiters included.
type TemplateLit struct {
	Raw string
}

type BoolLit struct {
	Value bool
}

type NullLit struct{}

type This struct{}

// ArrayLit elements may include *Spread.
type ArrayLit struct {
	Elems []Expr
}

type ObjectLit struct {
	Entries []ObjectEntry
}

// PropKind tells how an object property was written.
type PropKind string

const (
	PropInit   PropKind = "init"
	PropMethod PropKind = "method"
	PropGet    PropKind = "get"
	PropSet    PropKind = "set"
)

// Property is a key/value entry of an object literal. For PropMethod,
// PropGet and PropSet the value is a *Func.
type Property struct {
	Kind      PropKind
	Key       Expr
	Computed  bool
	Shorthand bool
	Value     Expr
}

// Spread is `...arg` in arrays, calls, parameters and object literals.
type Spread struct {
	Arg Expr
}

// Func is a function expression.
type Func struct {
	Name   string
	Params []Expr
	Body   *Block
	Async  bool
}

// Arrow is an arrow function. Exactly one of Expr and Block is set.
type Arrow struct {
	Params []Expr
	Expr   Expr
	Block  *Block
	Async  bool
}

type Call struct {
	Callee Expr
	Args   []Expr
}

type New struct {
	Callee Expr
	Args   []Expr
}

// Member is `obj.prop` or, when Computed, `obj[prop]`.
type Member struct {
	Object   Expr
	Property Expr
	Computed bool
}

// Binary covers arithmetic, comparison, logical and the pipeline operator.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a prefix operator such as `!`, `-` or `typeof`.
type Unary struct {
	Op string
	X  Expr
}

// Update is `++`/`--` in prefix or postfix position.
type Update struct {
	Op     string
	Prefix bool
	X      Expr
}

type Assign struct {
	Op     string
	Target Expr
	Value  Expr
}

type Conditional struct {
	Test Expr
	Cons Expr
	Alt  Expr
}

// Sequence is a comma expression.
type Sequence struct {
	Exprs []Expr
}

func (*Ident) node()       {}
func (*NumberLit) node()   {}
func (*StringLit) node()   {}
func (*TemplateLit) node() {}
func (*BoolLit) node()     {}
func (*NullLit) node()     {}
func (*This) node()        {}
func (*ArrayLit) node()    {}
func (*ObjectLit) node()   {}
func (*Property) node()    {}
func (*Spread) node()      {}
func (*Func) node()        {}
func (*Arrow) node()       {}
func (*Call) node()        {}
func (*New) node()         {}
func (*Member) node()      {}
func (*Binary) node()      {}
func (*Unary) node()       {}
func (*Update) node()      {}
func (*Assign) node()      {}
func (*Conditional) node() {}
func (*Sequence) node()    {}

func (*Ident) exprNode()       {}
func (*NumberLit) exprNode()   {}
func (*StringLit) exprNode()   {}
func (*TemplateLit) exprNode() {}
func (*BoolLit) exprNode()     {}
func (*NullLit) exprNode()     {}
func (*This) exprNode()        {}
func (*ArrayLit) exprNode()    {}
func (*ObjectLit) exprNode()   {}
func (*Spread) exprNode()      {}
func (*Func) exprNode()        {}
func (*Arrow) exprNode()       {}
func (*Call) exprNode()        {}
func (*New) exprNode()         {}
func (*Member) exprNode()      {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Update) exprNode()      {}
func (*Assign) exprNode()      {}
func (*Conditional) exprNode() {}
func (*Sequence) exprNode()    {}

func (*Property) entryNode() {}
func (*Spread) entryNode()   {}
