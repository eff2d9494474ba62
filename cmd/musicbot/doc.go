// Command musicbot runs the Telegram music bot and a few operator tools.
//
//	musicbot run            start polling Telegram
//	musicbot search QUERY   print catalog results as a table
//	musicbot config init    write a sample configuration file
package main
