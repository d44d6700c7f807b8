// Command poolctl simulates fixed-block pools and inspects pool snapshots.
package main

func main() {
	execute()
}
