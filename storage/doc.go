// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for notegraph's
// operational data: the staging review queue and the normalized-content
// cache.
//
// The markdown vault itself is NOT behind this package. The vault directory
// is the system's source of truth and is handled by the vault package; this
// package only covers the supporting records that live alongside it in a
// BadgerDB database.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction and keep
// backends swappable:
//
//	repo, err := badger.NewStagingRepository(backend)  // storage.StagingRepository
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
