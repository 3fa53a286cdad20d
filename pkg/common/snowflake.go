package common

import (
	"os"

	"github.com/bwmarrin/snowflake"
)

var snowflakeNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(int64(os.Getpid() % 1024))
	if err != nil {
		panic(err)
	}
	snowflakeNode = node
}

// UUID returns a new snowflake id string
func UUID() string {
	return snowflakeNode.Generate().String()
}
