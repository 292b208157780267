// Command zodgen generates zod schemas from Go types and descriptor
// manifests, following serde's enum representations.
package main

func main() {
	Execute()
}
