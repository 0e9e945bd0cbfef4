// # References:
//
// Adesto / Renesas
//   - [AT45DB041E]: AT45DB041E 4-Mbit DataFlash datasheet (https://www.renesas.com/us/en/document/dst/at45db041e-datasheet)
//   - [AN-1542]: Adesto application note, Migrating from standard to "power of 2" page size
//
// Linux SPI
//   - [spidev]: Linux SPI userspace API (https://www.kernel.org/doc/html/latest/spi/spidev.html)
//   - [spi-summary]: Overview of Linux kernel SPI support (https://www.kernel.org/doc/html/latest/spi/spi-summary.html)
package at45
