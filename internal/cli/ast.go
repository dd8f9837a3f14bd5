package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/printer"
	"github.com/roach88/cscript/internal/transpile"
)

// ASTOptions holds flags for the ast command.
type ASTOptions struct {
	*RootOptions
	Lowered bool // show the tree after lowering
}

// TreeNode is the JSON form of a syntax node.
type TreeNode struct {
	Label    string      `json:"label"`
	Children []*TreeNode `json:"children,omitempty"`
}

// NewASTCommand creates the ast command.
func NewASTCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ASTOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ast <input>",
		Short: "Print the syntax tree of a CScript file",
		Long: `Parse a CScript file and print its syntax tree.

With --lowered the tree is printed after the enabled lowerings ran, which
shows exactly what the printer will turn into JavaScript.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAST(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Lowered, "lowered", false, "print the tree after lowering")

	return cmd
}

func runAST(opts *ASTOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	src, err := os.ReadFile(input)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRead, err)
	}

	prog, err := transpile.Parse(string(src))
	if err != nil {
		return formatter.Fail(ExitFailure, ErrorCode(err), err)
	}
	if opts.Lowered {
		proj, err := opts.loadProject()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrorCode(err), err)
		}
		if _, err := transpile.Lower(prog,
			transpile.WithFeatures(proj.features()),
			transpile.WithLogger(proj.logger),
		); err != nil {
			return formatter.Fail(ExitFailure, ErrorCode(err), err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(buildTree(prog))
	}

	formatter.setupPterm()
	root := pterm.NewTreeFromLeveledList(leveledNodes(prog, pterm.LeveledList{}, 0))
	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return err
	}
	fmt.Fprint(formatter.Writer, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func leveledNodes(n ast.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: nodeLabel(n)})
	for _, c := range ast.Children(n) {
		ll = leveledNodes(c, ll, level+1)
	}
	return ll
}

func buildTree(n ast.Node) *TreeNode {
	t := &TreeNode{Label: nodeLabel(n)}
	for _, c := range ast.Children(n) {
		t.Children = append(t.Children, buildTree(c))
	}
	return t
}

// nodeLabel names a node by kind plus the detail that is not visible in
// its children: operator, name, literal value.
func nodeLabel(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Program:
		return "Program"
	case *ast.VarDecl:
		return "VarDecl " + n.Kind
	case *ast.FuncDecl:
		return "FuncDecl " + n.Name
	case *ast.ClassDecl:
		return "ClassDecl " + n.Name
	case *ast.ClassMethod:
		return "ClassMethod " + modifiers(n.Static, n.Computed) + string(n.Kind)
	case *ast.ClassProperty:
		return strings.TrimSpace("ClassProperty " + modifiers(n.Static, n.Computed))
	case *ast.ForIn:
		if n.Of {
			return "ForOf"
		}
		return "ForIn"
	case *ast.Ident:
		return "Ident " + n.Name
	case *ast.NumberLit:
		return "Number " + n.Raw
	case *ast.StringLit:
		return "String " + printer.Quote(n.Value)
	case *ast.TemplateLit:
		return "Template " + n.Raw
	case *ast.BoolLit:
		return fmt.Sprintf("Bool %t", n.Value)
	case *ast.NullLit:
		return "Null"
	case *ast.Property:
		label := "Property " + string(n.Kind)
		if n.Shorthand {
			label += " shorthand"
		}
		if n.Computed {
			label += " computed"
		}
		return label
	case *ast.Func:
		return strings.TrimSpace("Func " + n.Name)
	case *ast.Member:
		if n.Computed {
			return "Member computed"
		}
		return "Member"
	case *ast.Binary:
		return "Binary " + n.Op
	case *ast.Unary:
		return "Unary " + n.Op
	case *ast.Update:
		if n.Prefix {
			return "Update prefix " + n.Op
		}
		return "Update " + n.Op
	case *ast.Assign:
		return "Assign " + n.Op
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

func modifiers(static, computed bool) string {
	var s string
	if static {
		s += "static "
	}
	if computed {
		s += "computed "
	}
	return s
}
