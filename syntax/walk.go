package syntax

import "fmt"

// Visitor holds a Visit method which is invoked for each node
// encountered by Walk. If the result visitor w is not nil, Walk visits
// each of the children of node with the visitor w, followed by a call
// of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

func walkCommands(v Visitor, cmds []Command) {
	for _, c := range cmds {
		Walk(v, c)
	}
}

func walkWords(v Visitor, words []*Word) {
	for _, w := range words {
		Walk(v, w)
	}
}

func walkList(v Visitor, cl *CommandList) {
	if cl == nil {
		return
	}
	walkCommands(v, cl.Items)
}

// Walk traverses an AST in depth-first order: it starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w
// for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch x := node.(type) {
	case *File:
		walkList(v, x.Body)
	case *CommandList:
		walkCommands(v, x.Items)
	case *SimpleCommand:
		for _, a := range x.Assigns {
			Walk(v, a)
		}
		walkWords(v, x.Words)
		for _, r := range x.Redirs {
			Walk(v, r)
		}
	case *Pipeline:
		walkCommands(v, x.Commands)
	case *AndOrList:
		Walk(v, x.Left)
		Walk(v, x.Right)
	case *Subshell:
		walkList(v, x.Body)
	case *BraceGroup:
		walkList(v, x.Body)
	case *If:
		walkList(v, x.Cond)
		walkList(v, x.Then)
		for _, e := range x.Elifs {
			walkList(v, e.Cond)
			walkList(v, e.Then)
		}
		walkList(v, x.Else)
	case *While:
		walkList(v, x.Cond)
		walkList(v, x.Body)
	case *Until:
		walkList(v, x.Cond)
		walkList(v, x.Body)
	case *For:
		walkWords(v, x.Words)
		walkList(v, x.Body)
	case *Case:
		Walk(v, x.Word)
		for _, item := range x.Items {
			walkWords(v, item.Patterns)
			walkList(v, item.Body)
		}
	case *FunctionDef:
		Walk(v, x.Body)
		for _, r := range x.Redirs {
			Walk(v, r)
		}
	case *RedirectedCommand:
		Walk(v, x.Inner)
		for _, r := range x.Redirs {
			Walk(v, r)
		}
	case *Assign:
		if x.Value != nil {
			Walk(v, x.Value)
		}
	case *Redirect:
		if x.Word != nil {
			Walk(v, x.Word)
		}
	case *Word:
		for _, p := range x.Parts {
			Walk(v, p)
		}
	case *Lit:
	case *SglQuoted:
	case *DblQuoted:
		for _, p := range x.Parts {
			Walk(v, p)
		}
	case *ParamExp:
		if x.Arg != nil {
			Walk(v, x.Arg)
		}
	case *CmdSubst:
		walkList(v, x.Body)
	case *ArithmExp:
	default:
		panic(fmt.Sprintf("syntax.Walk: unexpected node type %T", x))
	}

	v.Visit(nil)
}
