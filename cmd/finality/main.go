// finality 命令行：创世区块、密钥与本地模拟
package main

func main() {
	Execute()
}
