// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The service package implements the application layer in the clean architecture,
// containing use cases that coordinate the flow of data between external interfaces
// (API, message queues, etc.) and the domain layer. It abstracts away infrastructure
// details while orchestrating domain entities to fulfill business requirements.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define application-specific operations available to the delivery mechanisms
//   - Each service focuses on a specific domain area (users, tasks)
//
// 2. Use Case Implementations:
//   - Coordinate the stores, the payload validator and the listing cache
//   - Scope every task operation to the verified owner passed in by the caller
//   - Invalidate the listing cache after every committed mutation
//
// 3. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Core dependencies include stores, the cache and the password hasher
//
// 4. Error Handling:
//   - Translate domain-specific errors to application-level errors
//   - Provide meaningful error context for API responses
//
// The service layer depends on domain entities and repository interfaces (from store),
// but never on specific infrastructure implementations, maintaining the Dependency
// Inversion Principle of clean architecture.
package service
