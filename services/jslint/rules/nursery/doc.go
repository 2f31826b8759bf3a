// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package nursery contains rules that are new and may still change.
//
// # noInvalidConstructorSuper
//
//	| super() call | extends clause | superclass verdict | finding         |
//	|--------------|----------------|--------------------|-----------------|
//	| yes          | yes            | false              | BadExtends      |
//	| yes          | yes            | true / unknown     | none            |
//	| no           | yes (literal)  | -                  | none            |
//	| no           | yes            | -                  | MissingSuper    |
//	| yes          | no             | -                  | UnexpectedSuper |
//	| no           | no             | -                  | none            |
//
// Only direct statements of the constructor body are searched for the
// super() call. `if (x) { super(); }` counts as no call.
package nursery
