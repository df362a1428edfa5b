// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

// Package xenv populates statically typed configuration structs from flat
// string key-value mappings, the OS environment by default.
// Raw values can also be taken from .env / ini / (java) properties / toml /
// yaml / json files, or from etcd.
package xenv
