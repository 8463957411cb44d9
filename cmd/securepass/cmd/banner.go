package cmd

import (
	"fmt"
)

const banner = `
  ____                          ____
 / ___|  ___  ___ _   _ _ __ ___|  _ \ __ _ ___ ___
 \___ \ / _ \/ __| | | | '__/ _ \ |_) / _` + "`" + ` |/ __/ __|
  ___) |  __/ (__| |_| | | |  __/  __/ (_| |\__ \__ \
 |____/ \___|\___|\__,_|_|  \___|_|   \__,_||___/___/

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Local Secret Vault - Version %s\x1b[0m\n\n", Version)
}
