// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package syntax

// Tree-sitter node kinds used by the typed views and by lint rules.
//
// Reference: https://github.com/tree-sitter/tree-sitter-javascript
//
//	https://github.com/tree-sitter/tree-sitter-typescript
const (
	KindProgram = "program"
	KindError   = "ERROR"

	// Class-related nodes
	KindClassDeclaration         = "class_declaration"
	KindClass                    = "class" // class expression
	KindAbstractClassDeclaration = "abstract_class_declaration"
	KindClassHeritage            = "class_heritage"
	KindExtendsClause            = "extends_clause" // TypeScript only
	KindImplementsClause         = "implements_clause"
	KindClassBody                = "class_body"
	KindMethodDefinition         = "method_definition"
	KindPropertyIdentifier       = "property_identifier"
	KindStatic                   = "static"

	// Statement nodes
	KindStatementBlock      = "statement_block"
	KindExpressionStatement = "expression_statement"

	// Expression nodes
	KindThis                          = "this"
	KindSuper                         = "super"
	KindIdentifier                    = "identifier"
	KindUndefined                     = "undefined"
	KindFunction                      = "function"
	KindFunctionExpression            = "function_expression"
	KindGeneratorFunction             = "generator_function"
	KindArrowFunction                 = "arrow_function"
	KindCallExpression                = "call_expression"
	KindImport                        = "import"
	KindMetaProperty                  = "meta_property"
	KindYieldExpression               = "yield_expression"
	KindAwaitExpression               = "await_expression"
	KindNewExpression                 = "new_expression"
	KindMemberExpression              = "member_expression"
	KindSubscriptExpression           = "subscript_expression"
	KindAssignmentExpression          = "assignment_expression"
	KindAugmentedAssignmentExpression = "augmented_assignment_expression"
	KindBinaryExpression              = "binary_expression"
	KindUnaryExpression               = "unary_expression"
	KindUpdateExpression              = "update_expression"
	KindTernaryExpression             = "ternary_expression"
	KindSequenceExpression            = "sequence_expression"
	KindParenthesizedExpression       = "parenthesized_expression"
	KindArguments                     = "arguments"

	// Literal nodes
	KindNumber         = "number"
	KindString         = "string"
	KindTemplateString = "template_string"
	KindRegex          = "regex"
	KindTrue           = "true"
	KindFalse          = "false"
	KindNull           = "null"
	KindArray          = "array"
	KindObject         = "object"

	// TypeScript value-forwarding wrappers
	KindAsExpression        = "as_expression"
	KindSatisfiesExpression = "satisfies_expression"
	KindNonNullExpression   = "non_null_expression"
	KindTypeAssertion       = "type_assertion"
	KindTypeArguments       = "type_arguments"
)

// Field names used by the grammars.
const (
	FieldName        = "name"
	FieldBody        = "body"
	FieldFunction    = "function"
	FieldLeft        = "left"
	FieldRight       = "right"
	FieldOperator    = "operator"
	FieldCondition   = "condition"
	FieldConsequence = "consequence"
	FieldAlternative = "alternative"
	FieldValue       = "value"
)

// JavaScript class AST Structure Reference
//
// class_declaration | class | abstract_class_declaration (TS)
// ├── class
// ├── identifier | type_identifier          // name (optional on class expressions)
// ├── class_heritage?
// │   ├── extends                           // JavaScript: keyword + expression
// │   └── <expression>
// │   or, in TypeScript:
// │   ├── extends_clause?
// │   │   ├── extends
// │   │   ├── <expression>                  // field "value"
// │   │   └── type_arguments?
// │   └── implements_clause?
// └── class_body
//     └── method_definition
//         ├── static?
//         ├── property_identifier           // field "name": "constructor"
//         ├── formal_parameters
//         └── statement_block               // field "body"
//             └── expression_statement
//                 └── call_expression
//                     ├── super             // field "function"
//                     └── arguments
